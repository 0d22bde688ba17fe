// Package schema persists the trading state in independent named
// partitions over the ledger key-value store: plain maps, per-parent-key
// families and Merkle-rooted history lists. Read-only and read-write
// access are distinguished by type: operations authorized against a View
// cannot write.
package schema

import (
	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// Key addresses one record: a partition (family) name plus the ordered
// attribute path inside it.
type Key struct {
	Family string
	Attrs  []string
}

func NewKey(family string, attrs ...string) Key {
	return Key{Family: family, Attrs: attrs}
}

// Entry is one record returned by a family scan.
type Entry struct {
	Attrs []string
	Value []byte
}

// View is the read-only capability over the store. Get returns nil for
// an absent key. List scans a family under a parent attribute prefix in
// key order.
type View interface {
	Get(key Key) ([]byte, error)
	List(family string, parentAttrs ...string) ([]Entry, error)
}

// Fork is the read-write capability. All writes of one transaction are
// discarded together if the transaction fails.
type Fork interface {
	View
	Put(key Key, value []byte) error
	Delete(key Key) error
}

// StubView adapts the chaincode stub as a read-only View. Families map
// to composite-key object types.
type StubView struct {
	stub shim.ChaincodeStubInterface
}

func NewStubView(stub shim.ChaincodeStubInterface) *StubView {
	return &StubView{stub: stub}
}

func (v *StubView) Get(key Key) ([]byte, error) {
	ck, err := v.stub.CreateCompositeKey(key.Family, key.Attrs)
	if err != nil {
		return nil, err
	}
	return v.stub.GetState(ck)
}

func (v *StubView) List(family string, parentAttrs ...string) ([]Entry, error) {
	iter, err := v.stub.GetStateByPartialCompositeKey(family, parentAttrs)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []Entry
	for iter.HasNext() {
		kv, err := iter.Next()
		if err != nil {
			return nil, err
		}
		_, attrs, err := v.stub.SplitCompositeKey(kv.Key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Attrs: attrs, Value: kv.Value})
	}
	return entries, nil
}

// StubFork adapts the chaincode stub as a Fork. Fabric buffers the write
// set and drops it when the transaction returns an error, which gives
// the discard-on-failure semantics for free.
type StubFork struct {
	StubView
}

func NewStubFork(stub shim.ChaincodeStubInterface) *StubFork {
	return &StubFork{StubView{stub: stub}}
}

func (f *StubFork) Put(key Key, value []byte) error {
	ck, err := f.stub.CreateCompositeKey(key.Family, key.Attrs)
	if err != nil {
		return err
	}
	return f.stub.PutState(ck, value)
}

func (f *StubFork) Delete(key Key) error {
	ck, err := f.stub.CreateCompositeKey(key.Family, key.Attrs)
	if err != nil {
		return err
	}
	return f.stub.DelState(ck)
}
