package tplink

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/brutella/hc/log"

	"github.com/quatrano/hearth/config"
)

const devicePort = 9999

const cmdSysinfo = `{"system":{"get_sysinfo":{}}}`

var udpConn *net.UDPConn

func startListener() error {
	udpl, err := net.ListenUDP("udp", &net.UDPAddr{IP: nil, Port: devicePort})
	if err != nil {
		return err
	}
	udpConn = udpl

	go func() {
		buffer := make([]byte, 2048)
		for {
			n, addr, err := udpConn.ReadFromUDP(buffer)
			if err != nil {
				log.Info.Println(err.Error())
				break
			}
			res := decrypt(buffer[0:n])
			doUDPResponse(addr.IP.String(), res)
		}
	}()
	return nil
}

func stopListener() {
	if udpConn != nil {
		udpConn.Close()
		udpConn = nil
	}
}

func doUDPResponse(host, res string) {
	if res == cmdSysinfo {
		// our own broadcast echoing back, no need to log it
		return
	}

	if !strings.Contains(res, `"get_sysinfo"`) {
		log.Debug.Printf("unhandled response [%s] %s", host, res)
		return
	}

	var r response
	if err := json.Unmarshal([]byte(res), &r); err != nil {
		log.Info.Println(err.Error())
		return
	}

	offerToCollector(&Device{Host: host, Sysinfo: r.System.Sysinfo})
	updateState(host, &r.System.Sysinfo)
}

// sendUDP sends the command and does not wait for any response;
// responses are handled by the listener goroutine
func sendUDP(host string, cmd string) error {
	if udpConn == nil {
		return fmt.Errorf("udp listener not running")
	}

	repeats := config.Get().TPLinkBroadcasts
	// unset or 0 sends 1 packet
	if repeats < 1 {
		repeats = 1
	}

	payload := encrypt(cmd)
	for i := 0; i < repeats; i++ {
		_, err := udpConn.WriteToUDP(payload, &net.UDPAddr{IP: net.ParseIP(host), Port: devicePort})
		if err != nil {
			log.Info.Printf("cannot send UDP command: %s", err.Error())
			return err
		}
	}
	return nil
}

// Rescan fires a sysinfo broadcast outside the normal pull cycle
func Rescan() error {
	return broadcastCmd(cmdSysinfo)
}

func broadcastCmd(cmd string) error {
	bcast, err := broadcastAddresses()
	if err != nil {
		return err
	}

	for _, b := range bcast {
		if err := sendUDP(b.String(), cmd); err != nil {
			return err
		}
	}
	return nil
}

// broadcastAddresses collects the IPv4 broadcast address of every up,
// non-loopback interface
func broadcastAddresses() ([]net.IP, error) {
	var bcast []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return bcast, err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipnet.IP.To4()
			if ip4 == nil {
				continue
			}
			b := make(net.IP, len(ip4))
			for i := range ip4 {
				b[i] = ip4[i] | ^ipnet.Mask[i]
			}
			bcast = append(bcast, b)
		}
	}
	return bcast, nil
}
