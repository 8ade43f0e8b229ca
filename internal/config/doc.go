// Package config loads vcore.yaml.
//
// Every field has a default, so a missing section (or a missing file, when
// the caller uses Default) yields a working configuration. Command-line
// flags override file values after loading.
//
// # Configuration File Structure
//
//	server:
//	  address: ":8080"
//	  websocket_path: /ws
//	  read_timeout: 60s
//	  write_timeout: 10s
//	  heartbeat_interval: 25s
//	  max_message_size: 65536
//	  send_queue: 64
//	  event_rate: 50
//	  event_burst: 100
//	scheduler:
//	  recursion_limit: 100
//	  task_queue: 256
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  path: /metrics
//	  namespace: vcore
//	tracing:
//	  enabled: false
//	  tracer: github.com/vango-dev/vcore
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Server.Address)
package config
