package devices

import (
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/service"
)

// HS200 covers both the 200 and the 210 in-wall switches
type HS200 struct {
	*accessory.Accessory
	Switch *HS200Svc
}

func NewHS200(info accessory.Info) *HS200 {
	acc := HS200{}
	acc.Accessory = accessory.New(info, accessory.TypeSwitch)

	acc.Switch = NewHS200Svc()
	acc.AddService(acc.Switch.Service)
	return &acc
}

type HS200Svc struct {
	*service.Service

	On *characteristic.On
}

func NewHS200Svc() *HS200Svc {
	svc := HS200Svc{}
	svc.Service = service.New(service.TypeSwitch)

	svc.On = characteristic.NewOn()
	svc.AddCharacteristic(svc.On.Characteristic)

	return &svc
}
