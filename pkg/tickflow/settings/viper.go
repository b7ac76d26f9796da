package settings

import (
	"strings"

	"github.com/spf13/viper"
)

// ViperBackend serves settings from a viper instance, so keys can come from
// any source viper merges: flags, environment, config files and defaults.
type ViperBackend struct {
	v *viper.Viper
}

var _ Backend = ViperBackend{}

// FromViper wraps v as a Backend.
func FromViper(v *viper.Viper) ViperBackend {
	return ViperBackend{v: v}
}

// FromEnv returns a Backend reading keys from environment variables. The
// key consumer.rate is read from PREFIX_CONSUMER_RATE.
func FromEnv(prefix string) ViperBackend {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return ViperBackend{v: v}
}

// Lookup implements Backend.
func (b ViperBackend) Lookup(key string) (any, bool) {
	if b.v == nil || !b.v.IsSet(key) {
		return nil, false
	}
	return b.v.Get(key), true
}
