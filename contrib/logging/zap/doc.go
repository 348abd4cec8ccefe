// Package zap adapts go.uber.org/zap to types.Logger.
//
//	logger, _ := zap.NewProduction()
//	env, _ := odbc.NewEnvironment(drv,
//	    odbc.WithLogger(odbczap.New(logger)),
//	)
package zap
