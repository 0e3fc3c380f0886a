package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "launcher":
		return launcherTemplate, nil
	case "tunnel":
		return tunnelTemplate, nil
	case "web":
		return webTemplate, nil
	case "render":
		return renderTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const launcherTemplate = `params_root = "/data/params/d"
project_root = "/data/openpilot"
log_dir = ""
ready_delay = "3s"
web_port = 3000

# Daemon overrides replace the default stack wholesale. Leave the list out
# to launch encoderd, webrtcd and the steering page with fixed arguments.
#
# [[daemons]]
# id = "web_steer"
# name = "steering control page"
# command = "/usr/local/bin/webctl"
# args = []
# env = []
# match = "webctl"
# start_delay = "0s"
`

const tunnelTemplate = `host = "comma-device"
port = 22
user = "comma"
key_path = "~/.ssh/id_rsa"
known_hosts_path = ""
insecure_host_key = false
dial_timeout = "10s"
keepalive = "30s"
local_addr = "127.0.0.1:3000"
remote_addr = "localhost:3000"
`

const webTemplate = `addr = "0.0.0.0:3000"
webrtcd_addr = "localhost:5001"
cors_origins = ["*"]
proxy_timeout = "10s"
`

const renderTemplate = `input_dir = ""
output_dir = ""
template = "overlay_template.html"
renderer_cmd = []
workers = 4
fps = 20.0
`
