package devices

import (
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/service"
)

// ThermoHygrometer is a combined temperature / relative-humidity sensor.
// Either service may be nil when the matching condition is not monitored.
type ThermoHygrometer struct {
	*accessory.Accessory
	TempSensor     *service.TemperatureSensor
	HumiditySensor *service.HumiditySensor
}

func NewThermoHygrometer(info accessory.Info, withTemperature, withHumidity bool) *ThermoHygrometer {
	acc := ThermoHygrometer{}
	acc.Accessory = accessory.New(info, accessory.TypeSensor)

	if withTemperature {
		acc.TempSensor = service.NewTemperatureSensor()
		acc.TempSensor.CurrentTemperature.SetMinValue(-40)
		acc.TempSensor.CurrentTemperature.SetMaxValue(176)
		acc.TempSensor.CurrentTemperature.SetStepValue(0.1)
		acc.AddService(acc.TempSensor.Service)
	}

	if withHumidity {
		acc.HumiditySensor = service.NewHumiditySensor()
		acc.HumiditySensor.CurrentRelativeHumidity.SetMinValue(0)
		acc.HumiditySensor.CurrentRelativeHumidity.SetMaxValue(100)
		acc.HumiditySensor.CurrentRelativeHumidity.SetStepValue(0.1)
		acc.AddService(acc.HumiditySensor.Service)
	}

	return &acc
}
