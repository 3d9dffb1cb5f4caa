// Package orm is the entry point of keel. A Client binds a driver and a
// dialect; Repository[T] runs the table operations of one entity type:
//
//	client, err := orm.New(drv, orm.Logger(logger))
//	if err != nil {
//		return err
//	}
//	users := orm.For[User](client)
//
//	u := &User{Email: "a8m@example.com"}
//	if err := users.Save(ctx, u); err != nil { // INSERT, u.ID is populated
//		return err
//	}
//	u.Email = "a8m@keel.dev"
//	if err := users.Save(ctx, u); err != nil { // UPDATE, the key exists
//		return err
//	}
//	found, err := users.FindByID(ctx, u.ID)
//	if keel.IsNotFound(err) {
//		...
//	}
//
// Custom queries map into any type with Select and SelectSeq:
//
//	emails, err := orm.Select[string](ctx, client, `SELECT "email" FROM "users"`)
//
// Every operation blocks until the driver returns and honors the context.
// Errors of the mapping core are *keel.Error values; driver errors are
// returned wrapped but otherwise untouched.
package orm
