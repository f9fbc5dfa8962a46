package logger

import (
	"go.uber.org/zap"
)

var Log *zap.Logger

// Init configura o logger global. Em produção usa JSON estruturado,
// em desenvolvimento saída legível no console.
func Init(production bool) {
	var err error
	if production {
		Log, err = zap.NewProduction()
	} else {
		Log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
}

func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
