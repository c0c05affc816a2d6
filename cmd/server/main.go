package main

import (
	"context"
	"errors"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	persistlog "github.com/Jolva/SuperQuester-sub001/internal/persistence/log"
	"github.com/Jolva/SuperQuester-sub001/internal/persistence/queststore"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/catalogs"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/tuning"
	"github.com/Jolva/SuperQuester-sub001/internal/sim/world"
	"github.com/Jolva/SuperQuester-sub001/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 1337, "world seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable quest persistence")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		log.WithError(err).Fatal("load catalogs")
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Fatal("load tuning")
		}
		log.WithField("path", tp).Warn("tuning not found, using defaults")
		tune = tuning.Defaults()
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.WithError(err).Fatal("create data dir")
	}

	anchor := world.Vec3i{}
	if len(tune.Anchor) == 3 {
		anchor = world.Vec3i{X: tune.Anchor[0], Y: tune.Anchor[1], Z: tune.Anchor[2]}
	}
	w, err := world.New(world.WorldConfig{
		TickRateHz: tune.TickRateHz,
		DayTicks:   tune.DayTicks,
		Seed:       *seed,
		BoundaryR:  tune.BoundaryR,
		LoadRadius: tune.LoadRadius,
		Anchor:     anchor,
		Encounter:  tune.Encounter,
	}, cats)
	if err != nil {
		log.WithError(err).Fatal("create world")
	}
	w.SetLogf(log.Infof)

	if !*disableDB {
		store, err := queststore.Open(filepath.Join(*dataDir, "quests.db"))
		if err != nil {
			log.WithError(err).Fatal("open quest store")
		}
		defer store.Close()
		w.SetQuestStore(store)
	} else {
		log.Warn("quest persistence disabled; quests will not survive a restart")
	}

	audit := persistlog.NewQuestAuditLogger(*dataDir)
	defer audit.Close()
	w.SetAuditLogger(audit)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("world loop exited")
		}
	}()

	wsServer := ws.NewServer(w, stdlog.New(log.Writer(), "[ws] ", 0))
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsServer.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
		w.Stop()
	}()

	log.WithFields(logrus.Fields{
		"addr":       *addr,
		"seed":       *seed,
		"encounters": len(cats.Encounters.ByID),
		"hostiles":   len(cats.Hostiles.ByID),
	}).Info("server listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("http server")
	}
	log.Info("shutdown complete")
}
