package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/quatrano/hearth"
	"github.com/quatrano/hearth/accessory"
	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/entry"
	"github.com/quatrano/hearth/platform"

	"github.com/brutella/hc/log"
	"github.com/urfave/cli/v2"
)

func main() {
	var dir, file string
	var debug bool

	app := cli.App{
		Name:  "hearthd",
		Usage: "HomeKit bridge for DHT climate sensors and TP-Link devices",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Value:       "config",
				Usage:       "configuration directory",
				Destination: &dir,
			},
			&cli.StringFlag{
				Name:        "config",
				Value:       "server.json",
				Usage:       "configuration file",
				Destination: &file,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "enable debug logging",
				Destination: &debug,
			},
		},
		Action: func(c *cli.Context) error {
			if debug {
				log.Debug.Enable()
			}

			fulldir, err := filepath.Abs(dir)
			if err != nil {
				log.Info.Panic("unable to get config directory: ", dir)
			}
			cfd := filepath.Join(fulldir, file)
			raw, err := ioutil.ReadFile(cfd)
			if err != nil {
				log.Info.Panic("unable to open config: ", cfd)
			}

			var conf config.Config
			if err := json.Unmarshal(raw, &conf); err != nil {
				log.Info.Panic(err, string(raw))
			}

			conf.ConfigDir = fulldir
			conf.ConfigFile = cfd
			config.Set(&conf)

			// config entries from previous runs come back first so the
			// platforms can pick them up during startup
			entriesFile := filepath.Join(fulldir, "entries.json")
			if err := entry.Load(entriesFile); err != nil {
				log.Info.Printf("unable to load config entries: %s", err)
			}

			// spin up platforms to listen to devices
			hearth.BootstrapPlatforms(&conf)

			// load accessory configs
			accdir := filepath.Join(fulldir, "accessories")
			files, err := ioutil.ReadDir(accdir)
			if err != nil {
				log.Info.Printf("no accessory directory: %s", err)
			}
			for _, f := range files {
				acc, err := fileToAccessory(filepath.Join(accdir, f.Name()), f.Name())
				if err != nil {
					log.Info.Print(err.Error())
					continue
				}
				hearth.AddAccessory(acc)
			}

			// HC can only be started once all accessories are known
			hearth.StartHC()

			// run all the background processes
			platform.Background()

			// wait for signal to shut down
			sigch := make(chan os.Signal, 3)
			signal.Notify(sigch, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP, os.Interrupt)
			sig := <-sigch

			log.Info.Printf("shutdown requested by signal: %s", sig)
			platform.ShutdownAllPlatforms()
			if err := entry.Save(entriesFile); err != nil {
				log.Info.Printf("unable to save config entries: %s", err)
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Info.Panic(err)
	}
}

func fileToAccessory(file string, name string) (*accessory.HAccessory, error) {
	raw, err := ioutil.ReadFile(file)
	if err != nil {
		log.Info.Printf("unable to open accessory config file: %s %s", file, err.Error())
		return nil, err
	}

	var acc accessory.HAccessory
	if err := json.Unmarshal(raw, &acc); err != nil {
		log.Info.Println(err, string(raw))
		return nil, err
	}

	if idx := strings.LastIndex(name, "."); idx > 0 {
		acc.Name = name[:idx]
	} else {
		acc.Name = name
	}
	return &acc, nil
}
