// Package pqencrypt provides post-quantum key management, envelope
// encryption and signatures.
//
// Keys are ML-KEM (512, 768, 1024) for encryption, and FN-DSA/Falcon
// (512, 1024) or ML-DSA/Dilithium (levels 2, 3, 5) for signatures. All
// artifacts are stored as ASCII-armored hex blocks.
//
// An envelope encapsulates a fresh shared secret to the recipient's KEM
// public key, derives a symmetric key from that secret and a passphrase,
// and seals the payload with AES-256-GCM (Standard) or XChaCha20-Poly1305
// (Extended).
//
// Basic usage:
//
//	kc := pqencrypt.NewKeychain(dir)
//	kp, err := kc.Generate(ctx, pqencrypt.KEM1024)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer kp.Destroy()
//
//	env := pqencrypt.NewEnvelope(kc)
//	sealed, err := env.Encrypt(ctx, pqencrypt.EncryptRequest{
//	    Algorithm:  pqencrypt.KEM1024,
//	    PublicKey:  kp.PublicKey,
//	    Payload:    pqencrypt.MessagePayload([]byte("hello")),
//	    Passphrase: []byte("pw1"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	plaintext, err := env.Decrypt(ctx, pqencrypt.DecryptRequest{
//	    Algorithm:     pqencrypt.KEM1024,
//	    SecretKey:     kp.SecretKey,
//	    KEMCiphertext: sealed.KEMCiphertext,
//	    Payload:       pqencrypt.MessagePayload(sealed.Payload),
//	    Passphrase:    []byte("pw1"),
//	})
package pqencrypt
