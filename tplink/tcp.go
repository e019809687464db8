package tplink

import (
	"encoding/json"
	"net"
	"time"

	"github.com/brutella/hc/log"

	"github.com/quatrano/hearth/config"
)

// getSysinfoTCP pulls a device directly; used to verify static devices and
// to fill in the model before an accessory is built.
// Package var so tests can stand in a fake device.
var getSysinfoTCP = func(host string) (*Sysinfo, error) {
	res, err := sendTCP(host, cmdSysinfo)
	if err != nil {
		return nil, err
	}

	var r response
	if err = json.Unmarshal([]byte(res), &r); err != nil {
		log.Info.Println(err.Error())
		return nil, err
	}
	return &r.System.Sysinfo, nil
}

func sendTCP(host string, cmd string) (string, error) {
	timeout := config.Get().TPLinkTimeout
	// unset/0 -- use the default of 10 seconds
	if timeout <= 0 {
		timeout = 10
	}
	payload := encryptTCP(cmd)
	r := net.TCPAddr{
		IP:   net.ParseIP(host),
		Port: devicePort,
	}

	conn, err := net.DialTCP("tcp4", nil, &r)
	if err != nil {
		log.Info.Printf("cannot connect to device: %s", err.Error())
		return "", err
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(time.Second * time.Duration(timeout)))
	if _, err = conn.Write(payload); err != nil {
		log.Info.Printf("cannot send command to device: %s", err.Error())
		return "", err
	}

	// HS200s return ~600 bytes, HS220s ~800; KP303s run larger, so size
	// for a normal wifi MTU. Anything bigger needs a read loop.
	data := make([]byte, 1500)
	n, err := conn.Read(data)
	if err != nil {
		log.Info.Println("cannot read data from device:", err)
		return "", err
	}
	return decrypt(data[4:n]), nil // skip the length prefix
}
