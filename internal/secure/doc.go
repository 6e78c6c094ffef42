// Package secure holds resolved secret values in protected memory while
// they travel between resolution and their point of use: the environment
// handed to a child process, or the credentials handed to a cloud session.
//
// Buffers wrap memguard enclaves: values sit encrypted at rest, mlocked
// against swapping, and behind guard pages. Plaintext appears only for the
// duration of a Reveal call plus whatever lifetime the caller gives the
// returned copy. For whole-process cleanup memguard.Purge() wipes every
// live enclave.
package secure
