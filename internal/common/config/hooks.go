package config

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/armadaproject/sweeprun/internal/sweep"
)

// CustomHooks are applied when unmarshalling configuration. Viper's own default hooks are
// included, since passing any DecodeHook replaces them.
var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		QuantityDecodeHook(),
		WallTimeDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)),
}

func QuantityDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != reflect.TypeOf(resource.Quantity{}) {
			return data, nil
		}
		return resource.ParseQuantity(fmt.Sprintf("%v", data))
	}
}

// WallTimeDecodeHook parses Slurm time strings such as 0-23:59:59. Bare numbers are minutes.
func WallTimeDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != reflect.TypeOf(sweep.WallTime(0)) {
			return data, nil
		}
		return sweep.ParseWallTime(fmt.Sprintf("%v", data))
	}
}
