// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "mcpgate")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/mcpgate.log")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.loglevel", "info")
	viper.SetDefault("server.apikey", "")
	viper.SetDefault("server.basepath", "")
	viper.SetDefault("server.maxfilesize", 0)

	viper.SetDefault("search.apikey", "")
	viper.SetDefault("search.baseurl", "https://api.search.brave.com/res/v1/web/search")
	viper.SetDefault("search.timeoutseconds", 15)
	viper.SetDefault("search.cachettlsecs", 300)
	viper.SetDefault("search.ratelimitms", 1000)
}
