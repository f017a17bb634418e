// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.
package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Fantom-foundation/vtree/database/vtree"
)

var CheckStaleKeys = cli.Command{
	Action:    checkStaleKeys,
	Name:      "check-stale-keys",
	Usage:     "lists bogus stale keys of a range of tree versions without modifying the tree",
	ArgsUsage: "<directory>",
	Flags: []cli.Flag{
		&fromVersionFlag,
		&toVersionFlag,
	},
}

var (
	fromVersionFlag = cli.Uint64Flag{
		Name:  "from",
		Usage: "first version to check",
	}
	toVersionFlag = cli.Uint64Flag{
		Name:  "to",
		Usage: "last version to check, defaults to the latest version",
	}
)

func checkStaleKeys(context *cli.Context) error {
	return withDatabase(context, func(db *vtree.NodeDatabase) error {
		manifest, _, err := db.Manifest()
		if err != nil {
			return err
		}
		latest, found := manifest.LatestVersion()
		if !found {
			return fmt.Errorf("directory contains no tree")
		}
		from := context.Uint64(fromVersionFlag.Name)
		to := latest
		if context.IsSet(toVersionFlag.Name) {
			to = min(context.Uint64(toVersionFlag.Name), latest)
		}

		out := context.App.Writer
		total := 0
		for version := from; version <= to; version++ {
			keys, err := vtree.RunStaleKeysCheckForVersion(db, version)
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Fprintf(out, "%d\t%v\n", version, key)
			}
			total += len(keys)
		}
		fmt.Fprintf(out, "Found %d bogus stale keys in versions %d-%d\n", total, from, to)
		return nil
	})
}
