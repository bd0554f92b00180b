package di_test

import "github.com/sghaida/microkernel/di"

type DB struct {
	DSN string
}

type Logger struct {
	Level string
}

type BasketService struct {
	DB     *DB
	Logger *Logger
}

type UserService struct {
	DB     *DB
	Logger *Logger
	Basket *BasketService
}

// fixtureFactories registers constructors for the fixture types.
func fixtureFactories() *di.FactoryRegistry {
	return di.NewFactoryRegistry().
		Provide("db", func(args ...any) (any, error) {
			return &DB{DSN: args[0].(string)}, nil
		}).
		Provide("logger", func(args ...any) (any, error) {
			return &Logger{Level: args[0].(string)}, nil
		}).
		Provide("basket", func(args ...any) (any, error) {
			return &BasketService{DB: args[0].(*DB), Logger: args[1].(*Logger)}, nil
		}).
		Provide("user", func(args ...any) (any, error) {
			u := &UserService{DB: args[0].(*DB), Logger: args[1].(*Logger)}
			if len(args) > 2 && args[2] != nil {
				u.Basket = args[2].(*BasketService)
			}
			return u, nil
		})
}

// wiredContainer returns an open container defining db, logger, basket and user.
func wiredContainer() *di.Container {
	c := di.NewContainer(map[string]any{
		"db.dsn":    "postgres://%app.name%",
		"log.level": "info",
		"app.name":  "shop",
	}, fixtureFactories())

	_ = c.Define("db", di.NewDefinition("db", "%db.dsn%"))
	_ = c.Define("logger", di.NewDefinition("logger", "%log.level%"))
	_ = c.Define("basket", di.NewDefinition("basket", "@db", "@logger"))
	_ = c.Define("user", di.NewDefinition("user", "@db", "@logger", "@?basket"))
	return c
}
