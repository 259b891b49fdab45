package model

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidConstriction = errors.New("constriction must be below 100%")
	ErrInvalidPressure     = errors.New("pressure must be a finite number")
)

const (
	// 宿主侧允许的最大狭窄率
	MaxConstriction = 90.0

	DefaultUpstream     = 120.0
	DefaultDownstream   = 5.0
	DefaultConstriction = 28.0
)

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// 消息类型
const (
	TypeEnv     = "env"
	TypeResize  = "resize"
	TypeStart   = "start"
	TypeStop    = "stop"
	TypeEnvSet  = "envSet"
	TypeResized = "resized"
	TypeStarted = "started"
	TypeStopped = "stopped"
	TypeFrame   = "frame"
	TypeError   = "error"
)

// Env is the set of user controlled simulation parameters. It is replaced
// wholesale on every change.
type Env struct {
	UpstreamPressure    float64 `json:"upstream_pressure" yaml:"upstream_pressure"`
	DownstreamPressure  float64 `json:"downstream_pressure" yaml:"downstream_pressure"`
	ConstrictionPercent float64 `json:"constriction_percent" yaml:"constriction_percent"`
}

func DefaultEnv() Env {
	return Env{
		UpstreamPressure:    DefaultUpstream,
		DownstreamPressure:  DefaultDownstream,
		ConstrictionPercent: DefaultConstriction,
	}
}

// Clamp limits the constriction to [0, MaxConstriction].
func (e Env) Clamp() Env {
	switch {
	case math.IsNaN(e.ConstrictionPercent) || e.ConstrictionPercent < 0:
		e.ConstrictionPercent = 0
	case e.ConstrictionPercent > MaxConstriction:
		e.ConstrictionPercent = MaxConstriction
	}
	return e
}

func (e Env) Validate() error {
	if !finite(e.UpstreamPressure) {
		return fmt.Errorf("upstream %v: %w", e.UpstreamPressure, ErrInvalidPressure)
	}
	if !finite(e.DownstreamPressure) {
		return fmt.Errorf("downstream %v: %w", e.DownstreamPressure, ErrInvalidPressure)
	}
	if math.IsNaN(e.ConstrictionPercent) || e.ConstrictionPercent >= 100 {
		return fmt.Errorf("constriction %v: %w", e.ConstrictionPercent, ErrInvalidConstriction)
	}
	return nil
}

// 画布尺寸, 像素
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
