/*
Package grayarch converts 8-bit grayscale bitmaps to and from the BARCH
compressed format.

Files are converted by a Queue: a pool of workers runs one conversion each
while a single coordinator owns the status of every file, applies
completion messages in order and records them in a History database.
*/
package grayarch

import (
	"io/ioutil"
	"log"
)

// DefaultJobs is the number of conversion workers used when none is given.
const DefaultJobs = 4

type Grayarch struct {
	history *History
	logger  *log.Logger
	jobs    int

	convert func(string) (Direction, string, error)
}

// New returns a Grayarch recording conversions in the sqlite database file.
// An empty file disables the history.
func New(file string, jobs int, logger *log.Logger) (*Grayarch, error) {
	var history *History
	if file != "" {
		var err error
		if history, err = NewHistory(file); err != nil {
			return nil, err
		}
	}

	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}

	if jobs < 1 {
		jobs = DefaultJobs
	}

	return &Grayarch{
		history: history,
		logger:  logger,
		jobs:    jobs,
		convert: ConvertFile,
	}, nil
}

// History returns the conversion history, or nil if it is disabled.
func (g *Grayarch) History() *History {
	return g.history
}

func (g *Grayarch) Close() error {
	if g.history != nil {
		return g.history.Close()
	}
	return nil
}
