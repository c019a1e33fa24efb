// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package trace

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/db47h/gatesim"
)

// vcdID returns the short identifier of the i-th variable: printable ASCII
// characters from '!' to '~', in base 94.
//
func vcdID(i int) string {
	const first, n = '!', '~' - '!' + 1
	var b []byte
	for {
		b = append(b, byte(first+i%n))
		i /= n
		if i == 0 {
			break
		}
		i--
	}
	return string(b)
}

func vcdValue(s gatesim.Signal) byte {
	switch s {
	case gatesim.Zero:
		return '0'
	case gatesim.One:
		return '1'
	case gatesim.HiZ:
		return 'z'
	}
	return 'x'
}

// WriteVCD writes the recorded samples as a Value Change Dump. One step of
// simulated time is one timescale unit. Conflict and Unknown states are both
// written as x, so they cannot be told apart when reading the file back.
//
func (r *Recorder) WriteVCD(w io.Writer, module, timescale string) error {
	if module == "" {
		module = "gatesim"
	}
	if timescale == "" {
		timescale = "1ns"
	}
	bw := bufio.NewWriter(w)
	bw.WriteString("$version gatesim $end\n")
	bw.WriteString("$timescale " + timescale + " $end\n")
	bw.WriteString("$scope module " + strings.ReplaceAll(module, " ", "_") + " $end\n")
	ids := make([]string, len(r.names))
	for i, n := range r.names {
		ids[i] = vcdID(i)
		bw.WriteString("$var wire 1 " + ids[i] + " " + strings.ReplaceAll(n, " ", "_") + " $end\n")
	}
	bw.WriteString("$upscope $end\n$enddefinitions $end\n")

	var prev []gatesim.Signal
	for _, s := range r.samples {
		bw.WriteString("#" + strconv.FormatUint(s.Time, 10) + "\n")
		if prev == nil {
			bw.WriteString("$dumpvars\n")
		}
		for i, st := range s.States {
			if prev != nil && vcdValue(prev[i]) == vcdValue(st) {
				continue
			}
			bw.WriteByte(vcdValue(st))
			bw.WriteString(ids[i])
			bw.WriteByte('\n')
		}
		if prev == nil {
			bw.WriteString("$end\n")
		}
		prev = s.States
	}
	return bw.Flush()
}
