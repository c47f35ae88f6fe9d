package main

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
)

var runBucket = []byte("runs")

// fileResult is the per-file outcome shown in the run report and kept in the
// journal: did the file parse, and how many rows did it contribute.
type fileResult struct {
	Path   string
	Source string
	Rows   int
	Err    string
}

// runRecord is the journaled summary of one run.
type runRecord struct {
	When         time.Time
	Files        []fileResult
	Transactions int
	Bookings     int
	Stats        consolidateStats
}

// openRunLog opens (or creates) the bolt journal. The journal is an audit
// aid; callers treat any error here as non-fatal and keep running.
func openRunLog(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func writeRunRecord(db *bolt.DB, rec runRecord) error {
	return db.Update(func(tx *bolt.Tx) error {
		var val bytes.Buffer
		if err := gob.NewEncoder(&val).Encode(rec); err != nil {
			return err
		}
		return tx.Bucket(runBucket).Put([]byte(rec.When.Format(time.RFC3339)), val.Bytes())
	})
}

func iterateRunRecords(db *bolt.DB) ([]runRecord, error) {
	var recs []runRecord
	err := db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(runBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec runRecord
			if err := gob.NewDecoder(bytes.NewBuffer(v)).Decode(&rec); err != nil {
				return fmt.Errorf("undecodable run record %s: %v", k, err)
			}
			recs = append(recs, rec)
		}
		return nil
	})
	return recs, err
}
