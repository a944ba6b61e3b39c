package main

import (
	"encoding/hex"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManouchehrRasoulli/localstore/pkg"
	"github.com/ManouchehrRasoulli/localstore/pkg/logger"
	"github.com/ManouchehrRasoulli/localstore/pkg/storage"
)

type fileItem string

func (f fileItem) FileName() string { return string(f) }

func main() {
	var config string
	var file string
	var saveFrom string
	var deleteFlag bool

	flag.StringVar(&config, "config", "config.yml", "specify configuration file for service.")
	flag.StringVar(&config, "c", "config.yml", "specify configuration file for service.")
	flag.StringVar(&file, "file", "", "storage item file name to watch.")
	flag.StringVar(&file, "f", "", "storage item file name to watch.")
	flag.StringVar(&saveFrom, "save", "", "save content of given local file into the storage item.")
	flag.BoolVar(&deleteFlag, "delete", false, "delete the storage item.")
	flag.Parse()

	cfg, err := pkg.ReadConfig(config)
	if err != nil {
		clg := logger.New(os.Stdout, "localstore --> ", true)
		clg.Errorf("error localstore : got error %v on reading configuration file %s", err, config)
		os.Exit(1)
	}

	clg := logger.New(os.Stdout, cfg.Log.Prefix, cfg.Colored())
	clg.Printcf(logger.ColorGreen, "start localstore : with config file %v", config)
	clg.Infof("config localstore : root: %s, base: %s, buffer: %d", cfg.Root, cfg.BasePath, cfg.Watcher.BufferSize)

	if file == "" {
		clg.Errorf("error localstore : exit !! no storage item given, use -file")
		os.Exit(1)
	}

	provider, err := storage.NewProvider(storage.RootMapper{Root: cfg.Root},
		storage.WithBasePath(cfg.BasePath),
		storage.WithBufferSize(cfg.Watcher.BufferSize),
		storage.WithLogger(clg))
	if err != nil {
		clg.Errorf("error localstore : got error %v on creating provider", err)
		os.Exit(1)
	}
	defer provider.Close()

	h := provider.Item(fileItem(file))

	code := run(clg, h, saveFrom, deleteFlag)
	if err := h.Close(); err != nil {
		clg.Errorf("error localstore : got error %v on disposing %s", err, h.Name())
		code = 1
	}
	if code != 0 {
		_ = provider.Close()
		os.Exit(code)
	}
}

func run(clg *logger.ColorLogger, h *storage.Handle, saveFrom string, deleteFlag bool) int {
	switch {
	case saveFrom != "":
		f, err := os.Open(saveFrom)
		if err != nil {
			clg.Errorf("error localstore : got error %v on opening %s", err, saveFrom)
			return 1
		}
		defer f.Close()

		if err := h.Save(f); err != nil {
			clg.Errorf("error localstore : got error %v on saving %s", err, h.Path())
			return 1
		}
		clg.Printcf(logger.ColorGreen, "localstore : saved %s into %s", saveFrom, h.Path())
		return 0
	case deleteFlag:
		if err := h.Delete(); err != nil {
			clg.Errorf("error localstore : got error %v on deleting %s", err, h.Path())
			return 1
		}
		clg.Printcf(logger.ColorGreen, "localstore : deleted %s", h.Path())
		return 0
	}

	report := func(c storage.Change) {
		if c.Kind == storage.Deleted {
			clg.Warnf("localstore : %s", c)
			return
		}
		sum, err := h.Digest()
		if err != nil {
			clg.Errorf("error localstore : got error %v on digest of %s", err, c.Path)
			return
		}
		clg.Infof("localstore : %s digest %s", c, hex.EncodeToString(sum))
	}

	cb := storage.NewCallback(report)
	for _, register := range []func(*storage.Callback) error{h.OnCreate, h.OnUpdate, h.OnDelete} {
		if err := register(cb); err != nil {
			clg.Errorf("error localstore : got error %v on watching %s", err, h.Path())
			return 1
		}
	}

	clg.Infof("localstore : watching %s, exists: %v", h.Path(), h.Exists())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	clg.Printcf(logger.ColorGreen, "localstore : exit")
	return 0
}
