package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// Recipient is a named wallet from the local address book.
type Recipient struct {
	Name     string `yaml:"name"`
	WalletId string `yaml:"walletId"`
}

type AddressBook struct {
	Recipients []Recipient `yaml:"recipients"`
}

func LoadAddressBook(bookFile string) ([]Recipient, error) {
	var bookPath string
	if filepath.IsAbs(bookFile) {
		bookPath = bookFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		bookPath = filepath.Join(wd, bookFile)
	}

	data, err := os.ReadFile(bookPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", bookFile, err)
	}
	return ParseAddressBook(data)
}

func ParseAddressBook(data []byte) ([]Recipient, error) {
	var book AddressBook
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("unable to parse address book: %w", err)
	}

	seen := make(map[string]bool, len(book.Recipients))
	for i, r := range book.Recipients {
		if r.Name == "" {
			return nil, fmt.Errorf("recipient at index %d missing name", i)
		}
		if r.WalletId == "" {
			return nil, fmt.Errorf("recipient %q missing walletId", r.Name)
		}
		key := strings.ToLower(r.Name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate recipient %q", r.Name)
		}
		seen[key] = true
	}

	return book.Recipients, nil
}

// ResolveRecipient maps a recipient name to its wallet id. Anything that is
// not a known name is returned unchanged and treated as a wallet id.
func ResolveRecipient(book []Recipient, nameOrId string) string {
	for _, r := range book {
		if strings.EqualFold(r.Name, nameOrId) {
			return r.WalletId
		}
	}
	return nameOrId
}
