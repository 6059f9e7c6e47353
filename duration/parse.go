/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package duration

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// parseString parses "5d23h15m13s"-style input. The optional leading
// "<int>d" component is peeled off and added as 24h units before the
// remainder, if any, is handed to time.ParseDuration.
func parseString(s string) (Duration, error) {
	s = strings.Replace(s, "\"", "", -1)
	s = strings.Replace(s, "'", "", -1)
	s = strings.Replace(s, " ", "", -1)
	s = strings.TrimSpace(s)

	if s == "" {
		return 0, errors.New("duration: empty string")
	}

	days, rest, err := splitDays(s)
	if err != nil {
		return 0, err
	}

	var d time.Duration
	if rest != "" {
		v, e := time.ParseDuration(rest)
		if e != nil {
			return 0, e
		}
		d = v
	}

	return Duration(days*24*int64(time.Hour) + int64(d)), nil
}

// splitDays extracts a leading signed integer followed by "d" (case
// insensitive), returning the day count and whatever text follows it.
func splitDays(s string) (int64, string, error) {
	idx := strings.IndexAny(s, "dD")
	if idx < 0 {
		return 0, s, nil
	}

	head := s[:idx]
	if head == "" || head == "+" || head == "-" {
		return 0, s, nil
	}

	n, err := strconv.ParseInt(head, 10, 64)
	if err != nil {
		// Not a pure integer before the 'd' (e.g. it belongs to an
		// unrelated unit such as "ns"); let time.ParseDuration see it as-is.
		return 0, s, nil
	}

	return n, s[idx+1:], nil
}

func (d *Duration) parseString(s string) error {
	if v, e := parseString(s); e != nil {
		return e
	} else {
		*d = v
		return nil
	}
}

func (d *Duration) unmarshall(val []byte) error {
	if tmp, err := ParseByte(val); err != nil {
		return err
	} else {
		*d = tmp
		return nil
	}
}
