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

var Prune = cli.Command{
	Action:    prune,
	Name:      "prune",
	Usage:     "deletes nodes that became stale up to the given version",
	ArgsUsage: "<directory>",
	Flags: []cli.Flag{
		&upToFlag,
		&forceFlag,
	},
}

var (
	upToFlag = cli.Uint64Flag{
		Name:     "up-to",
		Usage:    "version to prune up to, older versions become unreadable",
		Required: true,
	}
	forceFlag = cli.BoolFlag{
		Name:  "force",
		Usage: "prune even if the stale keys of the pruned versions were not repaired",
	}
)

func prune(context *cli.Context) error {
	return withDatabase(context, func(db *vtree.NodeDatabase) error {
		target := context.Uint64(upToFlag.Name)
		if !context.Bool(forceFlag.Name) {
			if err := checkRepaired(db, target); err != nil {
				return err
			}
		}
		stats, pruned, err := vtree.NewMerkleTreePruner(db).PruneUpTo(target)
		if err != nil {
			return err
		}
		if !pruned {
			fmt.Fprintf(context.App.Writer, "Tree already pruned up to version %d\n", target)
			return nil
		}
		fmt.Fprintf(context.App.Writer, "Pruned %d nodes up to version %d\n", stats.PrunedKeys, stats.TargetVersion)
		return nil
	})
}

// checkRepaired makes sure that all stale keys deleted by pruning up to the
// given version were checked by the stale keys repair.
func checkRepaired(db vtree.StaleKeysRepairDatabase, target uint64) error {
	minStale, found, err := db.MinStaleKeyVersion()
	if err != nil || !found || minStale > target {
		return err
	}
	data, found, err := db.StaleKeysRepairData()
	if err != nil {
		return err
	}
	if !found || data.NextVersion <= target {
		next := uint64(0)
		if found {
			next = data.NextVersion
		}
		return fmt.Errorf("stale keys are only repaired up to version %d, run the repair first or use --%s", next, forceFlag.Name)
	}
	return nil
}
