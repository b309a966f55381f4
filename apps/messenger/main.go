package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trezcool/ujumbe/core"
	"github.com/trezcool/ujumbe/core/messaging"
	logsvc "github.com/trezcool/ujumbe/services/logger"
	dummytransport "github.com/trezcool/ujumbe/transport/dummy"
	restclient "github.com/trezcool/ujumbe/transport/rest"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lshortfile)

	// set up services
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	var tr messaging.Transport
	if conf.Debug {
		tr = seededTransport()
	} else {
		var err error
		tr, err = restclient.NewClient(conf)
		if err != nil {
			std.Fatalf("%+v", err)
		}
	}

	ctrl := messaging.NewController(&messaging.Options{
		Transport:    tr,
		Logger:       logger,
		PageSize:     conf.Messaging.PageSize,
		PollInterval: conf.Messaging.PollInterval,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := ctrl.Startup(ctx); err != nil {
		logger.Warn("initial sync incomplete", err)
	}
	cancel()

	ctrl.StartPolling()
	defer ctrl.StopPolling()
	logger.Info("messaging sync running; Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
}

// seededTransport backs local runs with a small in-memory dataset.
func seededTransport() messaging.Transport {
	tr := dummytransport.New("t-001", "Alice Teacher")
	tr.AddContact(messaging.Contact{
		UserID:   "p-001",
		FullName: "Bob Parent",
		Role:     "parent",
		Subjects: []messaging.Subject{{ID: "s-001", Name: "Carol Student"}},
	})
	tr.AddContact(messaging.Contact{
		UserID:   "a-001",
		FullName: "Dora Principal",
		Role:     "admin",
	})

	now := time.Now().UTC()
	tr.AddThread(
		messaging.Thread{
			ID: "th-001",
			Participants: []messaging.Participant{
				{UserID: "t-001", FullName: "Alice Teacher", IsSelf: true},
				{UserID: "p-001", FullName: "Bob Parent"},
			},
			Subject: &messaging.Subject{ID: "s-001", Name: "Carol Student"},
		},
		messaging.Message{ID: "m-001", ThreadID: "th-001", SenderID: "p-001",
			Body: "Hello, how is Carol doing in class?", CreatedAt: now.Add(-2 * time.Hour)},
		messaging.Message{ID: "m-002", ThreadID: "th-001", SenderID: "t-001",
			Body: "She is doing great, keep it up!", CreatedAt: now.Add(-1 * time.Hour)},
	)
	return tr
}
