package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shophub/ecommerce-api/internal/auth"
	"github.com/shophub/ecommerce-api/internal/catalog"
	"github.com/shophub/ecommerce-api/internal/config"
	"github.com/shophub/ecommerce-api/internal/demostore"
	"github.com/shophub/ecommerce-api/internal/events"
	"github.com/shophub/ecommerce-api/internal/httpx"
	kafkax "github.com/shophub/ecommerce-api/internal/kafka"
	"github.com/shophub/ecommerce-api/internal/orders"
	"github.com/shophub/ecommerce-api/internal/postgres"
	"github.com/shophub/ecommerce-api/internal/profile"
	"github.com/shophub/ecommerce-api/internal/redisx"
	"github.com/shophub/ecommerce-api/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiry)

	var (
		userRepo    users.Repository
		catalogRepo catalog.Repository
		orderRepo   orders.Repository
		sessions    users.SessionStore
		idem        orders.IdemCache
		cache       profile.Cache
		userEvents  events.Publisher = events.Discard{}
		orderEvents events.Publisher = events.Discard{}
	)

	var producers []*kafkax.Producer

	if cfg.DemoMode {
		store, err := demostore.Open(cfg.DemoStorePath)
		if err != nil {
			log.Fatalf("demo store: %v", err)
		}
		if store.FirstRun() {
			log.Printf("demo store seeded at %s (admin: %s / %s)",
				cfg.DemoStorePath, demostore.SeedAdminEmail, demostore.SeedAdminPassword)
		}
		userRepo = store.Users()
		catalogRepo = store.Catalog()
		orderRepo = store.Orders()
		sessions = store
	} else {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("db connect: %v", err)
		}
		defer db.Close()

		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()

		pUser := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicUserRegistered, 1024)
		pUser.Start(ctx)
		pOrder := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024)
		pOrder.Start(ctx)
		producers = append(producers, pUser, pOrder)
		userEvents, orderEvents = pUser, pOrder

		userRepo = &users.Repo{DB: db}
		catalogRepo = &catalog.Repo{DB: db}
		orderRepo = &orders.Repo{DB: db}
		sessions = &redisx.Sessions{RDB: rdb}
		idem = &redisx.Idem{RDB: rdb}
		cache = &redisx.DetailsCache{RDB: rdb}
	}

	userSvc := &users.Service{
		Repo:     userRepo,
		Catalog:  catalogRepo,
		Sessions: sessions,
		Tokens:   tokens,
		Events:   userEvents,
		Producer: cfg.ServiceName,
	}
	orderSvc := &orders.Service{
		Repo:     orderRepo,
		Users:    userRepo,
		Catalog:  catalogRepo,
		Idem:     idem,
		Events:   orderEvents,
		Producer: cfg.ServiceName,
	}
	profileSvc := &profile.Service{
		Users:   userRepo,
		Catalog: catalogRepo,
		Orders:  orderRepo,
		Cache:   cache,
	}

	router := httpx.NewRouter()
	httpx.Mount(router,
		&httpx.PublicHandler{Users: userSvc, Catalog: catalogRepo},
		&httpx.UserHandler{Users: userSvc, Orders: orderSvc, Profile: profileSvc},
		&httpx.AdminHandler{Users: userSvc, Catalog: catalogRepo, Orders: orderSvc, Profile: profileSvc},
		&httpx.AuthMiddleware{Tokens: tokens, Sessions: sessions, Users: userRepo},
	)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s (demo=%v)", cfg.HTTPAddr, cfg.DemoMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close()
	}
	cancel()
	for _, p := range producers {
		p.WaitClosed()
	}
}
