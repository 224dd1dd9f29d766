// Package autoload initializes the global logger from LOG_* environment
// variables on import:
//
//	import _ "github.com/proffessoro/Sentinele-Protocole/pkg/logger/autoload"
package autoload

import (
	"github.com/kelseyhightower/envconfig"

	logx "github.com/proffessoro/Sentinele-Protocole/pkg/logger"
)

func init() {
	var conf logx.Config
	if err := envconfig.Process("LOG", &conf); err != nil {
		logx.Init()
		return
	}
	logx.Init(conf)
}
