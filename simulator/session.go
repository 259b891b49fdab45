package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"stenosis/config"
	"stenosis/model"
	"stenosis/physics"
)

const (
	// 粒子速度以 60Hz 下的每帧像素数定义
	nominalFrame = time.Second / 60

	// 单次 tick 最多追赶的帧数
	maxFramesPerTick = 5.0
)

// Session drives an Engine from a ticker. Parameter and canvas updates take
// the same lock as a tick, so a tick never sees a half applied change.
type Session struct {
	mu     sync.Mutex
	engine *Engine

	interval  time.Duration
	pushEvery int

	lifecycle sync.Mutex
	stop      chan struct{}
	done      chan struct{}
}

func NewSession(cfg config.Simulation) *Session {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fps := cfg.FPS
	if fps <= 0 {
		fps = 60
	}
	pushEvery := cfg.PushEvery
	if pushEvery <= 0 {
		pushEvery = 1
	}
	return &Session{
		engine:    NewEngine(cfg, rand.New(rand.NewSource(seed))),
		interval:  time.Second / time.Duration(fps),
		pushEvery: pushEvery,
	}
}

func (s *Session) SetEnv(env model.Env) (physics.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SetEnv(env)
}

func (s *Session) Resize(canvas model.Canvas) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Resize(canvas)
}

func (s *Session) Result() physics.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Result()
}

func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Frame()
}

// Start runs the tick loop until Stop is called or ctx is done. push gets
// every pushEvery-th frame on the loop goroutine and must not block for
// long. Start returns false if the loop is already running.
func (s *Session) Start(ctx context.Context, push func(Frame)) bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.stop != nil {
		return false
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(ctx, s.stop, s.done, push)
	log.WithField("interval", s.interval).Info("仿真开始")
	return true
}

// Stop ends the loop and waits for it, so no frame is pushed after Stop
// returns. Stopping an idle session is a no-op.
func (s *Session) Stop() {
	s.lifecycle.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.lifecycle.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	log.Info("仿真停止")
}

func (s *Session) Running() bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	return s.stop != nil
}

func (s *Session) run(ctx context.Context, stop, done chan struct{}, push func(Frame)) {
	defer func() {
		s.lifecycle.Lock()
		if s.done == done {
			s.stop, s.done = nil, nil
		}
		s.lifecycle.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	last := time.Now()
	count := 0
LOOP:
	for {
		select {
		case <-stop:
			break LOOP
		case <-ctx.Done():
			break LOOP
		case now := <-ticker.C:
			dt := float64(now.Sub(last)) / float64(nominalFrame)
			if dt > maxFramesPerTick {
				dt = maxFramesPerTick
			}
			last = now

			s.mu.Lock()
			frame := s.engine.Step(dt)
			s.mu.Unlock()

			count++
			if count%s.pushEvery == 0 && push != nil {
				push(frame)
			}
		}
	}
}
