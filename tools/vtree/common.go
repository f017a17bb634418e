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
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Fantom-foundation/vtree/backend/kvdb"
	"github.com/Fantom-foundation/vtree/database/vtree"
)

// openDatabase opens the tree database in the directory passed as the only
// argument of the command.
func openDatabase(context *cli.Context) (*vtree.NodeDatabase, error) {
	if context.Args().Len() != 1 {
		return nil, fmt.Errorf("missing directory storing the tree")
	}
	dir := context.Args().Get(0)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("cannot access tree directory; %w", err)
	}

	kind, err := kvdb.ParseBackend(context.String(backendFlag.Name))
	if err != nil {
		return nil, err
	}
	db, err := kvdb.Open(kind, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database in %s; %w", kind, dir, err)
	}
	return vtree.NewNodeDatabase(db), nil
}

// withDatabase runs the given action on the database of the command and
// closes it afterwards.
func withDatabase(context *cli.Context, action func(db *vtree.NodeDatabase) error) (err error) {
	db, err := openDatabase(context)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close database; %w", closeErr))
		}
	}()
	return action(db)
}
