package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cryptguard/pqencrypt"
	"github.com/cryptguard/pqencrypt/internal/crypto"
	"github.com/cryptguard/pqencrypt/internal/fsutil"
)

const defaultKeyName = "keychain"

// keyPath resolves a key flag, defaulting to <home>/keychain<ext>.
func (a *app) keyPath(flag, ext string) string {
	if flag != "" {
		return flag
	}
	return filepath.Join(a.settings.Home, defaultKeyName+ext)
}

func payloadFromFlags(message, file string, messageSet bool) pqencrypt.Payload {
	p := pqencrypt.Payload{File: file}
	if messageSet {
		p.Message = []byte(message)
	}
	return p
}

func (a *app) writeOutput(path string, b []byte) error {
	if path == "" || path == "-" {
		_, err := a.cfg.Stdout.Write(b)
		return err
	}
	if err := fsutil.WriteFileAtomic(path, b, 0o600); err != nil {
		return &pqencrypt.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func (a *app) keygenCommand() *cobra.Command {
	var (
		algName string
		name    string
		demo    bool
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a keypair and store it in the key directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := pqencrypt.ParseAlgorithm(algName)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var (
				kp    *pqencrypt.KeyPair
				encap *pqencrypt.Encapsulation
			)
			if demo && alg.Family == pqencrypt.FamilyKEM {
				kp, encap, err = a.keychain.GenerateWithDemo(ctx, alg)
			} else {
				kp, err = a.keychain.Generate(ctx, alg)
			}
			if err != nil {
				return err
			}
			defer kp.Destroy()
			defer encap.Destroy()

			files, err := a.keychain.Persist(ctx, kp, name, encap)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Public key: %s\n", files.PublicKey)
			fmt.Fprintf(out, "Secret key: %s\n", files.SecretKey)
			if files.SharedSecret != "" {
				fmt.Fprintf(out, "Shared secret: %s\n", files.SharedSecret)
				fmt.Fprintf(out, "Ciphertext: %s\n", files.Ciphertext)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&algName, "alg", "a", "kem-1024", "algorithm (kem-512|768|1024, falcon-512|1024, dilithium-2|3|5)")
	cmd.Flags().StringVarP(&name, "name", "n", defaultKeyName, "base file name")
	cmd.Flags().BoolVar(&demo, "demo", false, "also store a self-encapsulated shared secret and ciphertext (KEM only)")
	return cmd
}

func (a *app) encryptCommand() *cobra.Command {
	var (
		algName, pubPath, message, file string
		pass, familyName, out, ctName   string
	)
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a message or file to a KEM public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := pqencrypt.ParseAlgorithm(algName)
			if err != nil {
				return err
			}
			family, err := pqencrypt.ParseSymmetricFamily(familyName)
			if err != nil {
				return err
			}
			payload := payloadFromFlags(message, file, cmd.Flags().Changed("message"))
			if _, err := payload.Read(); err != nil {
				return err
			}
			passphrase, err := a.passphrase(pass)
			if err != nil {
				return err
			}
			defer crypto.Zero(passphrase)

			pub := a.keyPath(pubPath, pqencrypt.ExtPublicKey)
			if ctName == "" {
				ctName = strings.TrimSuffix(filepath.Base(pub), filepath.Ext(pub))
			}

			env := pqencrypt.NewEnvelope(a.keychain)
			sealed, err := env.Encrypt(cmd.Context(), pqencrypt.EncryptRequest{
				Algorithm:     alg,
				PublicKeyPath: pub,
				Payload:       payload,
				Passphrase:    passphrase,
				Family:        family,
			})
			if err != nil {
				return err
			}

			files, err := env.SaveSealed(cmd.Context(), sealed, ctName, out)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Encrypted message: %s\n", files.Payload)
			fmt.Fprintf(w, "Ciphertext: %s\n", files.Ciphertext)
			if sealed.Nonce != nil {
				fmt.Fprintf(w, "Nonce: %s\n", hex.EncodeToString(sealed.Nonce))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&algName, "alg", "a", "kem-1024", "KEM algorithm")
	f.StringVar(&pubPath, "pub", "", "recipient public key (default <home>/keychain.pub)")
	f.StringVarP(&message, "message", "m", "", "message to encrypt")
	f.StringVarP(&file, "file", "f", "", "file to encrypt")
	f.StringVarP(&pass, "passphrase", "p", "", "passphrase (default $"+envPassphrase+" or prompt)")
	f.StringVar(&familyName, "family", "standard", "symmetric family (standard|extended)")
	f.StringVarP(&out, "out", "o", "", "encrypted message path (default <home>/message.enc)")
	f.StringVar(&ctName, "ct-name", "", "base name of the KEM ciphertext file (default: public key name)")
	return cmd
}

func (a *app) decryptCommand() *cobra.Command {
	var (
		algName, secPath, ctPath, in, message string
		pass, familyName, nonceHex, out       string
	)
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt an encrypted message with a KEM secret key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := pqencrypt.ParseAlgorithm(algName)
			if err != nil {
				return err
			}
			family, err := pqencrypt.ParseSymmetricFamily(familyName)
			if err != nil {
				return err
			}
			if ctPath == "" {
				return fmt.Errorf("%w: --ct is required", pqencrypt.ErrMissingInput)
			}

			payload := pqencrypt.Payload{File: in}
			if cmd.Flags().Changed("message") {
				payload.Message, err = pqencrypt.ParseEncryptedMessage(message)
				if err != nil {
					return err
				}
			}
			if _, err := payload.Read(); err != nil {
				return err
			}

			var nonce []byte
			if cmd.Flags().Changed("nonce") {
				nonce, err = hex.DecodeString(strings.TrimSpace(nonceHex))
				if err != nil {
					return fmt.Errorf("%w: nonce: %v", pqencrypt.ErrEncoding, err)
				}
			}

			passphrase, err := a.passphrase(pass)
			if err != nil {
				return err
			}
			defer crypto.Zero(passphrase)

			plaintext, err := pqencrypt.NewEnvelope(a.keychain).Decrypt(cmd.Context(), pqencrypt.DecryptRequest{
				Algorithm:      alg,
				SecretKeyPath:  a.keyPath(secPath, pqencrypt.ExtSecretKey),
				CiphertextPath: ctPath,
				Payload:        payload,
				Passphrase:     passphrase,
				Family:         family,
				Nonce:          nonce,
			})
			if err != nil {
				return err
			}
			defer crypto.Zero(plaintext)
			return a.writeOutput(out, plaintext)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&algName, "alg", "a", "kem-1024", "KEM algorithm")
	f.StringVar(&secPath, "sec", "", "secret key (default <home>/keychain.sec)")
	f.StringVar(&ctPath, "ct", "", "KEM ciphertext file")
	f.StringVarP(&in, "in", "i", "", "encrypted message file")
	f.StringVarP(&message, "message", "m", "", "encrypted message as hex or armored text")
	f.StringVarP(&pass, "passphrase", "p", "", "passphrase (default $"+envPassphrase+" or prompt)")
	f.StringVar(&familyName, "family", "standard", "symmetric family (standard|extended)")
	f.StringVar(&nonceHex, "nonce", "", "hex nonce printed by encrypt (extended family)")
	f.StringVarP(&out, "out", "o", "", "plaintext output path (default stdout)")
	return cmd
}

func (a *app) signCommand() *cobra.Command {
	var (
		algName, secPath, message, file, out string
		attached                             bool
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message or file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := pqencrypt.ParseAlgorithm(algName)
			if err != nil {
				return err
			}
			mode := pqencrypt.Detached
			if attached {
				mode = pqencrypt.Attached
			}

			signer := pqencrypt.NewSigner(a.keychain)
			sig, err := signer.SignFile(cmd.Context(), a.keyPath(secPath, pqencrypt.ExtSecretKey),
				payloadFromFlags(message, file, cmd.Flags().Changed("message")), alg, mode)
			if err != nil {
				return err
			}

			if out == "" {
				if file != "" {
					out = file + pqencrypt.ExtSignature
				} else {
					out = filepath.Join(a.settings.Home, "message"+pqencrypt.ExtSignature)
				}
			}
			if err := fsutil.EnsureDir(filepath.Dir(out)); err != nil {
				return &pqencrypt.IOError{Op: "mkdir", Path: filepath.Dir(out), Err: err}
			}
			if err := signer.SaveSignature(cmd.Context(), sig, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signature: %s\n", out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&algName, "alg", "a", "dilithium-3", "signature algorithm")
	f.StringVar(&secPath, "sec", "", "secret key (default <home>/keychain.sec)")
	f.StringVarP(&message, "message", "m", "", "message to sign")
	f.StringVarP(&file, "file", "f", "", "file to sign")
	f.BoolVar(&attached, "attached", false, "embed the message in the signature")
	f.StringVarP(&out, "out", "o", "", "signature path (default <file>.sig or <home>/message.sig)")
	return cmd
}

func (a *app) verifyCommand() *cobra.Command {
	var algName, pubPath, sigPath, message, file string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a detached or attached signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := pqencrypt.ParseAlgorithm(algName)
			if err != nil {
				return err
			}
			if sigPath == "" {
				return fmt.Errorf("%w: --sig is required", pqencrypt.ErrMissingInput)
			}

			pub, err := a.keychain.LoadPublicKey(a.keyPath(pubPath, pqencrypt.ExtPublicKey), alg)
			if err != nil {
				return err
			}

			signer := pqencrypt.NewSigner(a.keychain)
			sig, err := signer.LoadSignature(sigPath, alg)
			if err != nil {
				return err
			}

			if sig.Mode == pqencrypt.Attached {
				msg, err := signer.VerifyAttached(cmd.Context(), pub, sig.Bytes, alg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(msg)
				return err
			}

			msg, err := payloadFromFlags(message, file, cmd.Flags().Changed("message")).Read()
			if err != nil {
				return err
			}
			if err := signer.VerifyDetached(cmd.Context(), pub, sig.Bytes, msg, alg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signature valid")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&algName, "alg", "a", "dilithium-3", "signature algorithm")
	f.StringVar(&pubPath, "pub", "", "signer public key (default <home>/keychain.pub)")
	f.StringVarP(&sigPath, "sig", "s", "", "signature file")
	f.StringVarP(&message, "message", "m", "", "signed message (detached signatures)")
	f.StringVarP(&file, "file", "f", "", "signed file (detached signatures)")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the files in the key directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.keychain.List()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(w, "No files in %s\n", a.keychain.Dir())
				return nil
			}
			for _, f := range files {
				kind := "-"
				if f.Kind != 0 {
					kind = f.Kind.String()
				}
				fmt.Fprintf(w, "%-18s %s\n", kind, f.Path)
			}
			return nil
		},
	}
}

func (a *app) showCommand() *cobra.Command {
	var algName, name string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored keypair as hex (debugging only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := pqencrypt.ParseAlgorithm(algName)
			if err != nil {
				return err
			}
			kp, err := a.keychain.LoadKeyPair(name, alg)
			if err != nil {
				return err
			}
			defer kp.Destroy()

			var demo *pqencrypt.Encapsulation
			if alg.Family == pqencrypt.FamilyKEM {
				demo, err = a.loadDemo(name, alg)
				if err != nil {
					return err
				}
				defer demo.Destroy()
			}
			return a.keychain.Show(cmd.OutOrStdout(), kp, demo)
		},
	}
	cmd.Flags().StringVarP(&algName, "alg", "a", "kem-1024", "algorithm")
	cmd.Flags().StringVarP(&name, "name", "n", defaultKeyName, "base file name")
	return cmd
}

// loadDemo loads <name>.ss and <name>.ct when both exist.
func (a *app) loadDemo(name string, alg pqencrypt.Algorithm) (*pqencrypt.Encapsulation, error) {
	ssPath := filepath.Join(a.keychain.Dir(), name+pqencrypt.ExtSharedSecret)
	ctPath := filepath.Join(a.keychain.Dir(), name+pqencrypt.ExtCiphertext)
	for _, p := range []string{ssPath, ctPath} {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
	}

	ss, err := a.keychain.LoadSharedSecret(ssPath, alg)
	if err != nil {
		return nil, err
	}
	ct, err := a.keychain.LoadCiphertext(ctPath, alg)
	if err != nil {
		crypto.Zero(ss)
		return nil, err
	}
	return &pqencrypt.Encapsulation{SharedSecret: ss, Ciphertext: ct}, nil
}
