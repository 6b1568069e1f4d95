// Package auth is the credential and session-issuance core behind the
// raspiauth service: it validates signup/signin payloads against declarative
// schemas, stores credential records through a narrow adapter, verifies
// passwords with bcrypt, and mints signed bearer tokens downstream services
// trust.
//
// Tokens:
//   - Two variants share one typed claims contract. Admin tokens assert the
//     service itself (role ADMIN, 60 second lifetime, minted fresh per
//     privileged store call). User tokens carry an end-user session (role
//     USER, subject and USER claim set to the user id, 28 day lifetime).
//   - Signing is HMAC-SHA256 or RSA-SHA256, picked once per deployment. The
//     verifier only accepts the configured algorithm, checks issuer,
//     audience, and expiry, and reports every failure as the same
//     not-authentic error.
//
// Stores:
//   - CredentialStore abstracts the persistence technology. BunStore keeps
//     records in SQL behind unique indexes; GraphQLStore fronts a remote
//     graph database and authenticates each call with a fresh admin token.
//
// The HTTP boundary in http_controller.go is deliberately thin: it binds the
// account operations to routes, cookies, and the status-code contract, and
// translates the error taxonomy into responses.
package auth
