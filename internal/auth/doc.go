// Package auth provides authentication and authorization for the accounts
// service.
//
// It covers two login strategies that both terminate in a resolved user
// record:
//   - local: email + password verified against the stored bcrypt hash
//   - oauth: a provider-asserted subject id resolved to a local record,
//     linking by email or creating a record on first login
//
// A resolved record is turned into a signed bearer token (JWT) carrying
// {id, email, role}. Token verification is stateless: a token stays valid
// until its natural expiry regardless of later account changes. Callers
// that need a shorter staleness window should lower JWT_EXPIRES_IN.
//
// # Usage
//
// Wire the pieces explicitly; nothing registers itself globally:
//
//	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
//	repo := users.NewRepository(db, hasher)
//	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
//	svc := auth.NewService(repo, hasher, issuer)
//
// Protect routes with the middleware:
//
//	api.Use(auth.RequireAuth(issuer))
//	api.GET("/users", auth.RequireRole(entities.UserRoleAdmin), ctrl.List)
package auth
