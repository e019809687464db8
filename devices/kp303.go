package devices

import (
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/service"
)

// KP303 is a three-outlet power strip; each outlet is its own service
type KP303 struct {
	*accessory.Accessory
	Outlets []*service.Outlet
}

func NewKP303(info accessory.Info) *KP303 {
	acc := KP303{}
	acc.Accessory = accessory.New(info, accessory.TypeOutlet)

	for i := 0; i < 3; i++ {
		outlet := service.NewOutlet()
		acc.Outlets = append(acc.Outlets, outlet)
		acc.AddService(outlet.Service)
	}

	return &acc
}
