// Command inspect dumps the gatekeeper store in a readable table.
// Run it against a stopped instance or a copy of the database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/olekukonko/tablewriter"

	"gatekeeper/storage"
)

type pairRecord struct {
	Gate int64 `cbor:"1,keyasint"`
}

type memberRecord struct {
	Present      bool   `cbor:"1,keyasint"`
	LastEventSeq uint64 `cbor:"2,keyasint"`
}

type pendingRecord struct {
	Gate       int64     `cbor:"1,keyasint"`
	Message    int64     `cbor:"2,keyasint"`
	ObservedAt time.Time `cbor:"3,keyasint"`
	Seq        uint64    `cbor:"4,keyasint"`
}

func main() {
	dbPath := flag.String("db", "gatekeeper.db", "Path to badger DB")
	prefix := flag.String("prefix", "", "Limit the dump to one namespace (pair/, member/, pending/)")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Namespace", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				namespace, detail := describe(key, v)
				table.Append([]string{key, namespace, detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func describe(key string, value []byte) (string, string) {
	switch {
	case strings.HasPrefix(key, storage.PairPrefix):
		var rec pairRecord
		if err := cbor.Unmarshal(value, &rec); err != nil {
			return "PAIR", "Error: unmarshal failed"
		}
		return "PAIR", fmt.Sprintf("gate=%d", rec.Gate)

	case strings.HasPrefix(key, storage.MemberPrefix):
		var rec memberRecord
		if err := cbor.Unmarshal(value, &rec); err != nil {
			return "MEMBER", "Error: unmarshal failed"
		}
		return "MEMBER", fmt.Sprintf("present=%t seq=%d", rec.Present, rec.LastEventSeq)

	case strings.HasPrefix(key, storage.PendingPrefix):
		var rec pendingRecord
		if err := cbor.Unmarshal(value, &rec); err != nil {
			return "PENDING", "Error: unmarshal failed"
		}
		return "PENDING", fmt.Sprintf("gate=%d message=%d observed=%s",
			rec.Gate, rec.Message, rec.ObservedAt.Format("15:04:05"))

	default:
		return "?", fmt.Sprintf("%d bytes", len(value))
	}
}
