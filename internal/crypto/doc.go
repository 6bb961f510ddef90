// SPDX-License-Identifier: Apache-2.0

// Package crypto implements the one-way transforms used by the identity
// core: keyed digests for opaque session tokens, plain digests for
// password-setup tokens, Argon2id hashing for passwords, opaque token
// generation, and payment-event signature verification.
//
// Two hashing schemes coexist on purpose. Session and setup tokens are
// high-entropy random values looked up by exact digest match, so a fast
// deterministic digest keeps validation cheap. Passwords are low-entropy
// human-chosen secrets and must resist offline brute force, so they get a
// deliberately slow, salted, memory-hard hash. Mixing the two schemes is a
// correctness requirement, not a style choice.
package crypto
