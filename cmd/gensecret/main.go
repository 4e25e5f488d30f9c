// Command gensecret prints a random key suitable for the SECRET_KEY
// setting. Tokens are signed with HMAC, so the key only has to be random
// and long enough, 32 bytes here.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
)

const secretKeyBytesLen = 32

func main() {
	b := make([]byte, secretKeyBytesLen)

	if _, err := rand.Read(b); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(base64.RawStdEncoding.EncodeToString(b))
}
