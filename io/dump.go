package io

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"
)

// DUMP_DIR is the directory memory dumps are written to.
const DUMP_DIR = "dumps"

// WriteDump writes a memory image to DUMP_DIR/<unix time>.bin, and the
// register state, if any, alongside it as <unix time>.txt. The dump
// directory is created if needed. Returns the base name of the dump.
func WriteDump(filesys CreateFS, when time.Time, memory []byte, state string) (name string, err error) {
	subsys, err := filesys.Sub(DUMP_DIR)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return
		}
		// Create the directory
		err = filesys.Mkdir(DUMP_DIR, 0755)
		if err != nil {
			return
		}
		subsys, err = filesys.Sub(DUMP_DIR)
		if err != nil {
			return
		}
	}

	name = fmt.Sprintf("%d", when.Unix())

	err = writeFile(subsys, name+".bin", memory)
	if err != nil {
		return
	}

	if len(state) != 0 {
		err = writeFile(subsys, name+".txt", []byte(state))
		if err != nil {
			return
		}
	}

	return
}

func writeFile(filesys CreateFS, name string, data []byte) (err error) {
	var file io.WriteCloser
	file, err = filesys.Create(name)
	if err != nil {
		return
	}

	_, err = file.Write(data)
	err = errors.Join(err, file.Close())

	return
}
