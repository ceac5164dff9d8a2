// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import (
	"reflect"
	"testing"
)

func TestPostOrder(t *testing.T) {
	g := newBlockGraph(graphMuchnick())
	po := postOrder(g, 0)
	want := []int{3, 7, 5, 6, 4, 2, 1, 0}
	if !reflect.DeepEqual(want, po) {
		t.Errorf("want %v, got %v", want, po)
	}
}
