// Package secretstore keeps channel keys out of preset files.
//
// Secrets are stored in <dir>/secrets.age, a YAML map of label to value
// encrypted with filippo.io/age to an X25519 identity kept in
// <dir>/secrets.key. Callers hold tokens of the form secret://<label>
// instead of the values:
//
//	store, err := secretstore.Open(dir, logger)
//	token, err := store.Save("field:ch1", psk)   // "secret://field:ch1"
//	psk, ok, err := store.Fetch(token)
//
// Fetching an unknown label reports ok=false rather than an error.
package secretstore
