package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// writeAssets lays out a minimal data directory and returns its storage
// section.
func writeAssets(t *testing.T) StorageConfig {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "world", "world.json"),
		`{"zones":[{"id":"town","name":"Town","path":"town","rooms":[1]}]}`)
	writeFile(t, filepath.Join(dir, "world", "town", "index.json"),
		`{"rooms":[{"id":1,"file":"room-1.json"}]}`)
	writeFile(t, filepath.Join(dir, "world", "town", "room-1.json"),
		`{"id":1,"width":3,"height":1,"tiles":[[{"terrain":"grass"},{"terrain":"grass"},{"terrain":"grass"}]],"exits":[],
		  "spawns":[{"typeId":"apple","x":0,"y":0}],"npcs":[{"typeId":"owl","x":2,"y":0}]}`)

	writeFile(t, filepath.Join(dir, "objects", "manifest.json"), `{"objects":["apple"]}`)
	writeFile(t, filepath.Join(dir, "objects", "apple.json"),
		`{"version":1,"id":"apple","spec":{"name":"Apple","sprite":"apple.png"}}`)

	writeFile(t, filepath.Join(dir, "npcs", "manifest.json"), `{"npcs":["owl"]}`)
	writeFile(t, filepath.Join(dir, "npcs", "owl.json"),
		`{"version":1,"id":"owl","spec":{"name":"Owl","sprite":"owl.png","behavior":{"kind":"greeter"}}}`)

	return StorageConfig{
		World:   filepath.Join(dir, "world"),
		Objects: filepath.Join(dir, "objects"),
		NPCs:    filepath.Join(dir, "npcs"),
		Players: filepath.Join(dir, "players"),
		Clock:   filepath.Join(dir, "clock.json"),
	}
}

func validConfig(storage StorageConfig) Config {
	return Config{
		TickInterval: "1s",
		Listeners:    []ListenerConfig{{Protocol: ListenerTypeWebsocket, Port: 8080, Path: "/ws"}},
		Storage:      storage,
		Bus:          BusConfig{Mode: BusModeLocal},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(*Config)
		expErr string
	}{
		"valid": {
			mutate: func(*Config) {},
		},
		"defaults for durations": {
			mutate: func(c *Config) { c.TickInterval = "" },
		},
		"tick too short": {
			mutate: func(c *Config) { c.TickInterval = "500ms" },
			expErr: "tick_interval must be at least 1 second",
		},
		"tick unparseable": {
			mutate: func(c *Config) { c.TickInterval = "soon" },
			expErr: "parsing tick_interval",
		},
		"bad shutdown timeout": {
			mutate: func(c *Config) { c.ShutdownTimeout = "-1s" },
			expErr: "shutdown_timeout must be positive",
		},
		"bad log level": {
			mutate: func(c *Config) { c.LogLevel = "loud" },
			expErr: "log_level \"loud\" is invalid",
		},
		"no listeners": {
			mutate: func(c *Config) { c.Listeners = nil },
			expErr: "at least one listener is required",
		},
		"listener without port": {
			mutate: func(c *Config) { c.Listeners[0].Port = 0 },
			expErr: "listener 0: port must be set",
		},
		"listener path": {
			mutate: func(c *Config) { c.Listeners[0].Path = "ws" },
			expErr: "path must start with /",
		},
		"missing world": {
			mutate: func(c *Config) { c.Storage.World = "" },
			expErr: "world: path is required",
		},
		"world not a dir": {
			mutate: func(c *Config) { c.Storage.World = c.Storage.Clock + ".missing" },
			expErr: "world: invalid path",
		},
		"bad bus mode": {
			mutate: func(c *Config) { c.Bus.Mode = "carrier-pigeon" },
			expErr: "bus mode \"carrier-pigeon\" is invalid",
		},
		"bad bus timeout": {
			mutate: func(c *Config) { c.Bus.StartTimeout = "later" },
			expErr: "parsing start_timeout",
		},
		"room without zone": {
			mutate: func(c *Config) { c.Simulation.DefaultRoom = 4 },
			expErr: "default_room requires default_zone",
		},
		"bad step": {
			mutate: func(c *Config) { c.Simulation.BaseStepDuration = "0s" },
			expErr: "base_step_duration must be positive",
		},
		"negative buffer": {
			mutate: func(c *Config) { c.Simulation.SendBuffer = -1 },
			expErr: "send_buffer must not be negative",
		},
		"negative read limit": {
			mutate: func(c *Config) { c.Simulation.ReadLimit = -1 },
			expErr: "read_limit must not be negative",
		},
		"negative queue size": {
			mutate: func(c *Config) { c.Simulation.QueueSize = -1 },
			expErr: "queue_size must not be negative",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig(writeAssets(t))
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestListenerType_UnmarshalText(t *testing.T) {
	tests := map[string]struct {
		text   string
		exp    ListenerType
		expErr string
	}{
		"websocket": {text: "websocket", exp: ListenerTypeWebsocket},
		"short":     {text: "ws", exp: ListenerTypeWebsocket},
		"telnet":    {text: "telnet", expErr: "unknown listener type: telnet"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var lt ListenerType
			err := lt.UnmarshalText([]byte(tt.text))
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "type", lt, tt.exp)
		})
	}
}

func TestBuildWorkers(t *testing.T) {
	tests := map[string]struct {
		mutate     func(*Config)
		expWorkers []string
		expErr     string
	}{
		"local bus": {
			mutate:     func(*Config) {},
			expWorkers: []string{"driver", "listeners", "watchdog"},
		},
		"nats bus": {
			mutate:     func(c *Config) { c.Bus.Mode = BusModeNats },
			expWorkers: []string{"driver", "listeners", "watchdog", "nats"},
		},
		"unknown default room": {
			mutate: func(c *Config) {
				c.Simulation.DefaultZone = "town"
				c.Simulation.DefaultRoom = 9
			},
			expErr: "default location",
		},
		"wrong config type": {
			expErr: "unable to cast config",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var config interface{} = "nope"
			if tt.mutate != nil {
				cfg := validConfig(writeAssets(t))
				tt.mutate(&cfg)
				config = &cfg
			}

			workers, err := BuildWorkers(config)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "worker count", len(workers), len(tt.expWorkers))
			for _, name := range tt.expWorkers {
				_, ok := workers[name]
				testutil.AssertEqual(t, name, ok, true)
			}
		})
	}
}
