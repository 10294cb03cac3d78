package server

import (
	"sync"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/engine"
	"github.com/akmonengine/featherserver/internal/config"
	"go.uber.org/zap"
)

// statics is the engine state shared by every Server of the process
type statics struct {
	jobs    *engine.JobSystem
	filter  engine.GroupFilter
	contact *engine.ContactPool
	factory *engine.Factory
}

var (
	staticsMu   sync.Mutex
	serverCount int
	shared      *statics
)

// acquireStatics installs the engine hooks on first use
func acquireStatics(cfg config.Physics, logger *zap.Logger) *statics {
	staticsMu.Lock()
	defer staticsMu.Unlock()

	if serverCount == 0 {
		shared = initStatics(cfg, logger)
	}
	serverCount++

	return shared
}

// releaseStatics tears the engine state down with the last server
func releaseStatics(logger *zap.Logger) {
	staticsMu.Lock()
	defer staticsMu.Unlock()

	if serverCount == 0 {
		return
	}
	serverCount--
	if serverCount == 0 {
		finishStatics(shared, logger)
		shared = nil
	}
}

func initStatics(cfg config.Physics, logger *zap.Logger) *statics {
	engineLog := logger.Named("engine")
	s := &statics{
		contact: engine.NewContactPool(),
		factory: engine.NewFactory(),
	}

	hooks := engine.Hooks{
		Trace: func(msg string) { engineLog.Debug(msg) },
		Alloc: s.contact,
	}
	if cfg.Debug {
		hooks.AssertFailed = func(expression, msg string) {
			engineLog.Error("assertion failed", zap.String("expression", expression), zap.String("msg", msg))
		}
	}
	engine.InstallHooks(hooks)

	engine.RegisterTypes(s.factory)
	engine.SetFactory(s.factory)

	s.jobs = engine.NewJobSystem(cfg.Workers, cfg.MaxJobs, cfg.MaxBarriers)
	s.filter = groupFilter{}

	engine.DefaultMaterial = &actor.Material{StaticFriction: 1, DynamicFriction: 1}

	logger.Debug("engine statics initialized",
		zap.Int("workers", s.jobs.Workers()),
		zap.Int("max_jobs", s.jobs.MaxJobs()),
		zap.Bool("debug", cfg.Debug))

	return s
}

func finishStatics(s *statics, logger *zap.Logger) {
	s.filter = nil
	s.jobs.Close()
	s.jobs = nil

	// must go before the hooks it may still reach
	engine.DefaultMaterial = nil

	engine.SetFactory(nil)
	engine.UninstallHooks()

	logger.Debug("engine statics released")
}

// defaultMaterial is the material new bodies start with
func defaultMaterial() actor.Material {
	if m := engine.DefaultMaterial; m != nil {
		return *m
	}
	return actor.Material{StaticFriction: 1, DynamicFriction: 1}
}
