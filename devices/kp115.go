package devices

import (
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/service"
)

// KP115 is a single outlet with energy monitoring
type KP115 struct {
	*accessory.Accessory
	Outlet *KP115Svc
}

func NewKP115(info accessory.Info) *KP115 {
	acc := KP115{}
	acc.Accessory = accessory.New(info, accessory.TypeOutlet)

	acc.Outlet = NewKP115Svc()
	acc.AddService(acc.Outlet.Service)

	return &acc
}

type KP115Svc struct {
	*service.Service

	On          *characteristic.On
	OutletInUse *characteristic.OutletInUse
}

func NewKP115Svc() *KP115Svc {
	svc := KP115Svc{}
	svc.Service = service.New(service.TypeOutlet)

	svc.On = characteristic.NewOn()
	svc.AddCharacteristic(svc.On.Characteristic)

	svc.OutletInUse = characteristic.NewOutletInUse()
	svc.AddCharacteristic(svc.OutletInUse.Characteristic)

	return &svc
}
