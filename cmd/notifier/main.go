package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shophub/ecommerce-api/internal/config"
	"github.com/shophub/ecommerce-api/internal/email"
	"github.com/shophub/ecommerce-api/internal/events"
	kafkax "github.com/shophub/ecommerce-api/internal/kafka"
	"github.com/shophub/ecommerce-api/internal/notifier"
	"github.com/shophub/ecommerce-api/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	var sender email.Sender = email.LogSender{}
	if cfg.SMTPAddr != "" {
		sender = &email.SMTPSender{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom}
	}

	svc := &notifier.Service{
		Redis:       rdb,
		Sender:      sender,
		ServiceName: cfg.ServiceName + "-notifier",
	}

	cUser := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, events.TopicUserRegistered, cfg.NotifierWorkers)
	cOrder := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, events.TopicOrderCreated, cfg.NotifierWorkers)

	go func() {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d", cfg.NotifierGroup, events.TopicUserRegistered, cfg.NotifierWorkers)
		if err := cUser.Start(ctx, svc.HandleUserRegistered); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()
	go func() {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d", cfg.NotifierGroup, events.TopicOrderCreated, cfg.NotifierWorkers)
		if err := cOrder.Start(ctx, svc.HandleOrderCreated); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumers...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
