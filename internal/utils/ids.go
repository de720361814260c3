package utils

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateNanoIDWithPrefix returns ids like "cmp_x7k2..." used as primary keys.
func GenerateNanoIDWithPrefix(prefix string, length int) string {
	id, err := gonanoid.Generate(idAlphabet, length)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s_%s", prefix, id)
}

// GenerateMessageID creates an RFC 5322 Message-ID scoped to the sending domain.
func GenerateMessageID(domain string) string {
	id, err := gonanoid.Generate(idAlphabet, 12)
	if err != nil {
		panic(err)
	}

	timestamp := time.Now().UnixMicro()
	return fmt.Sprintf("<%d.%s@%s>", timestamp, id, domain)
}

func Now() time.Time {
	return time.Now().UTC()
}

func NowPtr() *time.Time {
	now := Now()
	return &now
}
