package schema

import (
	"fmt"

	"iptrade/model"
)

// History lists are append-only families ordered by a fixed-width
// decimal index, so a family scan returns entries in append order.
const historyIndexWidth = 20

func historyIndex(i int) string {
	return fmt.Sprintf("%0*d", historyIndexWidth, i)
}

func appendHistory(fork Fork, family, parent string, value []byte) error {
	entries, err := fork.List(family, parent)
	if err != nil {
		return err
	}
	return fork.Put(NewKey(family, parent, historyIndex(len(entries))), value)
}

func historyValues(view View, family, parent string) ([][]byte, error) {
	entries, err := view.List(family, parent)
	if err != nil {
		return nil, err
	}
	values := make([][]byte, 0, len(entries))
	for _, e := range entries {
		values = append(values, e.Value)
	}
	return values, nil
}

// historyRoot computes the Merkle root over the entry hashes of one
// history list. An empty list has the zero root. Odd nodes are promoted
// unchanged to the next level.
func historyRoot(view View, family, parent string) (model.Hash, error) {
	values, err := historyValues(view, family, parent)
	if err != nil {
		return model.Hash{}, err
	}
	if len(values) == 0 {
		return model.Hash{}, nil
	}

	level := make([]model.Hash, 0, len(values))
	for _, v := range values {
		level = append(level, model.NewHash(v))
	}
	for len(level) > 1 {
		next := make([]model.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				break
			}
			pair := make([]byte, 0, 2*len(level[i]))
			pair = append(pair, level[i][:]...)
			pair = append(pair, level[i+1][:]...)
			next = append(next, model.NewHash(pair))
		}
		level = next
	}
	return level[0], nil
}
