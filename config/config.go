package config

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

const DefaultPath = "conf/config.ini"

type Config struct {
	Server     Server
	Simulation Simulation
	LogLevel   string
}

type Server struct {
	Addr            string
	ReadBufferSize  int
	WriteBufferSize int
}

type Simulation struct {
	Particles    int
	FPS          int
	PushEvery    int // 每隔多少个 tick 推送一帧
	ProfileSteps int
	Seed         int64 // 0 表示按时间取种子
}

// Load reads the ini file at path. A missing file is not an error: every key
// has a default.
func Load(path string) (Config, error) {
	file, err := ini.LooseLoad(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return loadCfg(file), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return loadCfg(ini.Empty())
}

func loadCfg(file *ini.File) Config {
	server := file.Section("server")
	simulation := file.Section("simulation")
	cfg := Config{
		Server: Server{
			Addr:            server.Key("Addr").MustString(":9000"),
			ReadBufferSize:  server.Key("ReadBufferSize").MustInt(1024),
			WriteBufferSize: server.Key("WriteBufferSize").MustInt(1024),
		},
		Simulation: Simulation{
			Particles:    simulation.Key("Particles").MustInt(200),
			FPS:          simulation.Key("FPS").MustInt(60),
			PushEvery:    simulation.Key("PushEvery").MustInt(1),
			ProfileSteps: simulation.Key("ProfileSteps").MustInt(10),
			Seed:         simulation.Key("Seed").MustInt64(0),
		},
		LogLevel: file.Section("log").Key("Level").MustString("info"),
	}
	if cfg.Simulation.FPS <= 0 {
		cfg.Simulation.FPS = 60
	}
	if cfg.Simulation.PushEvery <= 0 {
		cfg.Simulation.PushEvery = 1
	}
	if cfg.Simulation.Particles < 0 {
		cfg.Simulation.Particles = 0
	}
	return cfg
}

// ApplyLogLevel sets the global logrus level, falling back to info.
func (c Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("未知日志级别, 使用 info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
