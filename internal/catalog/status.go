package catalog

type Status string

const (
	StatusInStock    Status = "IN_STOCK"
	StatusOutOfStock Status = "OUT_OF_STOCK"
	StatusComingSoon Status = "COMING_SOON"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusOutOfStock, StatusComingSoon:
		return true
	}
	return false
}
