// Package defaultxml holds the two built-in XML blobs the orchestrator
// hands to any mascot discovered with no XML of its own, such as an
// orphaned shimeN.png run.
package defaultxml

import (
	_ "embed"

	"github.com/pixelfinder/shimejifinder/entry"
	"github.com/pixelfinder/shimejifinder/extract"
)

//go:embed actions.xml
var actionsXML []byte

//go:embed behaviors.xml
var behaviorsXML []byte

// Actions returns the canonical actions.xml blob.
func Actions() []byte { return actionsXML }

// Behaviors returns the canonical behaviors.xml blob.
func Behaviors() []byte { return behaviorsXML }

// Emit writes both default blobs to every mascot named in mascots, one
// broadcast write per blob: BeginWrite is called once per mascot before a
// single WriteNext/EndWrite pair, so the final sink sees the same shape it
// would from a real multi-target archive entry.
func Emit(sink extract.Extractor, mascots []string) error {
	blobs := []struct {
		name string
		data []byte
	}{
		{"actions.xml", actionsXML},
		{"behaviors.xml", behaviorsXML},
	}

	for _, blob := range blobs {
		if len(mascots) == 0 {
			continue
		}
		for _, mascot := range mascots {
			if err := sink.BeginWrite(entry.Target{MascotName: mascot, OutputName: blob.name, Kind: entry.XML}); err != nil {
				return err
			}
		}
		if err := sink.WriteNext(0, blob.data); err != nil {
			return err
		}
		if err := sink.EndWrite(); err != nil {
			return err
		}
	}
	return nil
}
