// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import (
	"database/sql"
	"fmt"

	"github.com/engineprime-go/enginelib/internal/log"
)

// DetectVersion reads the schema version of an open library, per spec
// §4.D: both stores must carry exactly one Information row, their
// (major, minor, patch) tuples must agree, and — for a tuple known to be
// ambiguous — the declared type of Track.isExternalTrack disambiguates the
// firmware from the desktop variant. logger may be nil, in which case
// diagnostics around the variant probe are dropped.
func DetectVersion(db *sql.DB, logger *log.Helper) (Version, error) {
	count, err := informationRowCount(db)
	if err != nil {
		return Version{}, err
	}
	if count != 2 {
		return Version{}, &DatabaseInconsistencyError{
			Object: "Information",
			Reason: fmt.Sprintf("expected exactly one Information row per store, found %d total", count),
		}
	}

	musicVer, err := readInformationVersion(db, "music")
	if err != nil {
		return Version{}, err
	}
	perfVer, err := readInformationVersion(db, "perfdata")
	if err != nil {
		return Version{}, err
	}
	if musicVer != perfVer {
		return Version{}, &DatabaseInconsistencyError{
			Object: "Information",
			Reason: fmt.Sprintf("music store reports %v, performance store reports %v", musicVer, perfVer),
		}
	}

	v := Version{Major: musicVer[0], Minor: musicVer[1], Patch: musicVer[2]}
	if !ambiguousTuples[musicVer] {
		return v, nil
	}

	if logger != nil {
		logger.Debugf("schema tuple %d.%d.%d is ambiguous, probing isExternalTrack column type", musicVer[0], musicVer[1], musicVer[2])
	}
	variant, err := probeExternalTrackVariant(db)
	if err != nil {
		return Version{}, err
	}
	if logger != nil {
		logger.Debugf("isExternalTrack probe resolved variant %q", variant)
	}
	v.Variant = variant
	return v, nil
}

func informationRowCount(db *sql.DB) (int, error) {
	var total int
	for _, store := range []string{"music", "perfdata"} {
		var n int
		err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s.Information", store)).Scan(&n)
		if err != nil {
			return 0, wrapStorage("detect: count Information rows", err)
		}
		total += n
	}
	return total, nil
}

func readInformationVersion(db *sql.DB, store string) ([3]int, error) {
	var v [3]int
	err := db.QueryRow(fmt.Sprintf(
		"SELECT schemaVersionMajor, schemaVersionMinor, schemaVersionPatch FROM %s.Information WHERE id = 1", store),
	).Scan(&v[0], &v[1], &v[2])
	if err != nil {
		return v, wrapStorage("detect: read Information version", err)
	}
	return v, nil
}

// probeExternalTrackVariant inspects the declared SQL type of
// Track.isExternalTrack to tell the firmware variant (NUMERIC) from the
// desktop variant (INTEGER, the default for every other known version).
func probeExternalTrackVariant(db *sql.DB) (string, error) {
	rows, err := db.Query("PRAGMA music.table_info(Track)")
	if err != nil {
		return "", wrapStorage("detect: probe isExternalTrack", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notNull, pk int
		var name, sqlType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &sqlType, &notNull, &dflt, &pk); err != nil {
			return "", wrapStorage("detect: probe isExternalTrack scan", err)
		}
		if name == "isExternalTrack" {
			if sqlType == "NUMERIC" {
				return VariantFirmware, nil
			}
			return VariantDesktop, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return "", &DatabaseInconsistencyError{Object: "music.Track", Reason: "isExternalTrack column not found"}
}
