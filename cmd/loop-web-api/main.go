package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sarpt/goutils/pkg/listflag"

	"github.com/sarpt/loop-web-api/internal/config"
	"github.com/sarpt/loop-web-api/pkg/api"
)

const (
	addrFlag       = "addr"
	allowCorsFlag  = "allow-cors"
	bpmFlag        = "bpm"
	configFlag     = "config"
	dirFlag        = "dir"
	socketPathFlag = "socket-path"
	startMpvFlag   = "start-mpv"
)

var (
	address    *string
	allowCORS  *bool
	bpm        *int
	configPath *string
	dir        *listflag.StringList
	socketPath *string
	startMpv   *bool
)

func init() {
	dir = listflag.NewStringList([]string{})

	flag.Var(dir, dirFlag, "directory containing media files. when left empty, current working directory will be used")
	address = flag.String(addrFlag, config.DefaultAddress, "address on which server should listen on")
	allowCORS = flag.Bool(allowCorsFlag, false, "when not provided, Cross Origin Site Requests will be rejected")
	bpm = flag.Int(bpmFlag, 0, "initial tempo used for loop quantization. when left at 0, no tempo is set")
	configPath = flag.String(configFlag, "", "path to an optional YAML configuration file")
	socketPath = flag.String(socketPathFlag, config.DefaultMpvSocketPath, "path to the unix socket used for communication with the mpv instance")
	startMpv = flag.Bool(startMpvFlag, true, "when false, the server expects an already running mpv instance listening on the socket path")

	flag.Parse()
}

func main() {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		fileCfg, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)

			return
		}

		cfg = fileCfg
	}

	overlayFlags(&cfg)

	server, err := api.NewServer(api.Config{
		Address:                 cfg.Address,
		AllowCORS:               cfg.AllowCORS,
		MpvSocketPath:           cfg.MpvSocketPath,
		SocketConnectionTimeout: time.Duration(cfg.SocketConnectionTimeoutSec) * time.Second,
		StartMpvInstance:        cfg.StartMpvInstance,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)

		return
	}
	defer server.Close()

	if cfg.DefaultBPM != 0 {
		server.SetBPM(cfg.DefaultBPM)
	}

	var mediaDirectories []string
	if len(cfg.Directories) == 0 {
		wd, err := os.Getwd()
		if err == nil {
			mediaDirectories = append(mediaDirectories, fmt.Sprintf("%s/", wd))
		}
	} else {
		for _, dir := range cfg.Directories {
			mediaDirectories = append(mediaDirectories, fmt.Sprintf("%s/", dir))
		}
	}

	fmt.Fprintf(os.Stdout, "directories being watched for media files:\n%s\n", strings.Join(mediaDirectories, "\n"))
	err = server.AddDirectories(mediaDirectories)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)

		return
	}

	err = server.Serve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)

		return
	}
}

// overlayFlags applies command line arguments on top of the configuration.
// Only flags provided on the command line take precedence over the file.
func overlayFlags(cfg *config.Config) {
	provided := map[string]bool{}
	flag.Visit(func(f *flag.Flag) {
		provided[f.Name] = true
	})

	if provided[addrFlag] {
		cfg.Address = *address
	}
	if provided[allowCorsFlag] {
		cfg.AllowCORS = *allowCORS
	}
	if provided[bpmFlag] {
		cfg.DefaultBPM = *bpm
	}
	if provided[dirFlag] {
		cfg.Directories = dir.Values()
	}
	if provided[socketPathFlag] {
		cfg.MpvSocketPath = *socketPath
	}
	if provided[startMpvFlag] {
		cfg.StartMpvInstance = *startMpv
	}
}
