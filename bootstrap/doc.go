// Package bootstrap runs a service through its lifecycle: start components
// in order, run configure callbacks and hooks, wait for a signal, then stop
// everything in reverse within a graceful timeout.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(db)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error { ... })
//	err = app.Run(ctx)
//
// RunTask uses the same sequence for one-shot commands.
package bootstrap
