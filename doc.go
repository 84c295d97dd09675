// Package vaultkeep provides the client-side core of a zero-knowledge
// notebook and password vault: master-password key management, field-level
// authenticated encryption of vault records, and an offline-first sync
// engine that reconciles the local store with a remote backend using
// last-write-wins.
//
// Sensitive fields are encrypted on the device with a data key that never
// leaves process memory unencrypted; the remote backend only ever sees
// ciphertext.
//
// Basic usage:
//
//	client, err := vaultkeep.Open("vault.db", remote, connectivity)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// First run only.
//	if !client.Keys().IsInitialized() {
//	    if err := client.Keys().Initialize("master password"); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
//	session, err := client.Keys().Unlock("master password")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Lock()
//
//	item := &vaultkeep.VaultItem{Title: "Bank", Secret: vaultkeep.String("p@ss")}
//	if err := client.SaveItem(ctx, session, item); err != nil {
//	    log.Fatal(err)
//	}
//
//	client.StartSync("user-1")
package vaultkeep
