package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gfdmit/web-forum/posts-api/config"
	"github.com/gfdmit/web-forum/posts-api/internal/ai"
	"github.com/gfdmit/web-forum/posts-api/internal/auth"
	"github.com/gfdmit/web-forum/posts-api/internal/cache"
	v1 "github.com/gfdmit/web-forum/posts-api/internal/handlers/http/v1"
	"github.com/gfdmit/web-forum/posts-api/internal/httpserver"
	"github.com/gfdmit/web-forum/posts-api/internal/mail"
	"github.com/gfdmit/web-forum/posts-api/internal/moderation"
	"github.com/gfdmit/web-forum/posts-api/internal/notifier"
	"github.com/gfdmit/web-forum/posts-api/internal/repository"
	"github.com/gfdmit/web-forum/posts-api/internal/repository/kv"
	"github.com/gfdmit/web-forum/posts-api/internal/repository/minio"
	"github.com/gfdmit/web-forum/posts-api/internal/repository/postgres"
	"github.com/gfdmit/web-forum/posts-api/internal/service"
)

func Run(conf config.Config) error {
	ctx := context.Background()

	db, err := postgres.New(conf.Postgres)
	if err != nil {
		return fmt.Errorf("error when setting up postgres: %v", err)
	}
	defer db.Close()

	badgerDB, err := kv.Open(conf.Storage.BadgerPath)
	if err != nil {
		return fmt.Errorf("error when opening badger: %v", err)
	}
	defer badgerDB.Close()

	var objects repository.ObjectStore
	if conf.MinIO.Enabled {
		store, err := minio.New(ctx, conf.MinIO)
		if err != nil {
			return fmt.Errorf("error when setting up minio: %v", err)
		}
		objects = store
	}

	mailer, err := mail.New(conf.Mail)
	if err != nil {
		return fmt.Errorf("error when setting up mailer: %v", err)
	}

	moderator, err := moderation.New(conf.Moderation)
	if err != nil {
		return fmt.Errorf("error when setting up moderation: %v", err)
	}

	users, err := cache.NewUsers(conf.Cache.UserTTL)
	if err != nil {
		return fmt.Errorf("error when setting up user cache: %v", err)
	}
	defer users.Close()

	queue := notifier.NewQueue(badgerDB)
	notify := notifier.New(queue, conf.Notifier)

	svc := service.New(service.Deps{
		Tx:        db,
		Users:     postgres.NewUsers(db),
		Posts:     postgres.NewPosts(db),
		Comments:  postgres.NewComments(db),
		Media:     postgres.NewMedia(db),
		Objects:   objects,
		Notifier:  notify,
		Moderator: moderator,
		Replier:   ai.New(conf.AI),
		Cache:     users,
		KV:        kv.New(badgerDB),
		Tokens:    auth.NewTokens(conf.Auth),
		PublicURL: conf.HTTPServer.PublicURL,
	})

	notify.Handle(notifier.KindEmail, notifier.EmailHandler(mailer))
	notify.Handle(service.KindAutoReply, svc.AutoReply)

	handler, err := v1.New(svc)
	if err != nil {
		return fmt.Errorf("error when setting up handler: %v", err)
	}

	workersCtx, stopWorkers := context.WithCancel(ctx)
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		if err := notify.Run(workersCtx); err != nil {
			log.Printf("[NOTIFIER] stopped with error: %v", err)
		}
	}()

	httpserver := httpserver.New(conf.HTTPServer, handler)
	err = httpserver.Run(ctx)

	// Workers stop after the HTTP server so no request enqueues into a
	// stopped pool. Interrupted tasks are re-queued.
	stopWorkers()
	<-workersDone

	return err
}
