package configuration

import (
	_ "embed"

	"github.com/armadaproject/sweeprun/internal/common/config"
)

//go:embed config.yaml
var defaults []byte

// Load returns the configuration obtained by applying userSpecifiedConfigs, the environment and
// flags on top of the built-in defaults. The result is not validated.
func Load(userSpecifiedConfigs []string, flags config.FlagBindings) (SweepConfiguration, error) {
	var c SweepConfiguration
	if err := config.LoadConfig(&c, defaults, userSpecifiedConfigs, flags); err != nil {
		return SweepConfiguration{}, err
	}
	return c, nil
}
