package orders

type PaymentMode string

const (
	ModeCOD    PaymentMode = "COD"
	ModeOnline PaymentMode = "ONLINE"
)

func (m PaymentMode) Valid() bool {
	return m == ModeCOD || m == ModeOnline
}

type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusSuccess PaymentStatus = "SUCCESS"
	StatusFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

var validNext = map[PaymentStatus]map[PaymentStatus]bool{
	StatusPending: {StatusSuccess: true, StatusFailed: true},
	StatusSuccess: {},
	StatusFailed:  {},
}

func CanTransition(from, to PaymentStatus) bool {
	return validNext[from][to]
}
