package httpctl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brutella/hc/log"
	"github.com/gorilla/mux"

	haccessory "github.com/quatrano/hearth/accessory"
	"github.com/quatrano/hearth/config"
	"github.com/quatrano/hearth/entry"
	"github.com/quatrano/hearth/platform"
	"github.com/quatrano/hearth/tplink"
)

// Platform is the primary handle
type Platform struct {
	Running bool
}

var srv http.Server

// Startup is called by the platform management to get things running
func (h Platform) Startup(c *config.Config) platform.Control {
	r := mux.NewRouter()
	r.HandleFunc("/", homeHandler)
	r.HandleFunc("/tplink/rescan", rescanHandler)
	r.HandleFunc("/tplink/unload", unloadHandler)

	srv = http.Server{
		Addr:         c.HTTPAddress,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      r,
	}

	go func() {
		log.Info.Printf("starting up HTTP control channel on %s", c.HTTPAddress)
		if err := srv.ListenAndServe(); err != nil {
			log.Info.Print(err)
		}
	}()

	return h
}

// Shutdown is called by the platform management to shut things down
func (h Platform) Shutdown() platform.Control {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	srv.Shutdown(ctx)
	return h
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	fmt.Fprint(w, `{ "status": "OK" }`)
}

func rescanHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := tplink.Rescan(); err != nil {
		http.Error(w, `{ "status": "bad" }`, http.StatusInternalServerError)
		return
	}
	fmt.Fprint(w, `{ "status": "OK" }`)
}

// unloadHandler tears the TP-Link entry down; mostly useful when shuffling
// devices around without restarting the bridge
func unloadHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	e, ok := entry.ForDomain(tplink.Domain)
	if !ok {
		http.Error(w, `{ "status": "no entry" }`, http.StatusNotFound)
		return
	}
	result := map[string]bool{"unloaded": tplink.UnloadEntry(e)}
	json.NewEncoder(w).Encode(result)
}

// AddAccessory - do not use, just satisfies the Platform interface
func (h Platform) AddAccessory(a *haccessory.HAccessory) {
}

// GetAccessory - do not use, just satisfies the Platform interface
func (h Platform) GetAccessory(name string) (*haccessory.HAccessory, bool) {
	return nil, false
}

// Background - just satisfies the Platform interface
func (h Platform) Background() {
}
