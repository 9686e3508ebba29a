/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestDefaults(t *testing.T) {
	p := NewDefaultPageRequest(0, -1)
	assert.Equal(t, 1, p.GetPage())
	assert.Equal(t, DefaultPageSize, p.GetPageSize())
	assert.Equal(t, 0, p.GetOffset())
	assert.Nil(t, p.GetFilter())
	assert.Empty(t, p.GetOrders())

	p = NewPageRequestWithFilter(3, 20, nil)
	assert.Equal(t, 40, p.GetOffset())
}

func TestPagination(t *testing.T) {
	p := NewDefaultPagination[int](2, 10)
	assert.Equal(t, 0, p.TotalPages())
	assert.False(t, p.HasNext())

	p.Total = 21
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.HasNext())

	p.Page = 3
	assert.False(t, p.HasNext())

	one := 1
	p.Items = []*int{&one}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":3,"pageSize":10,"total":21,"items":[1]}`, string(data))

	assert.Equal(t, 0, (&Pagination[int]{Total: 5}).TotalPages())
}

func TestDerivableTotal(t *testing.T) {
	cases := []struct {
		name                   string
		offset, pageSize, size int
		total                  int
		ok                     bool
	}{
		{"first page not full", 0, 10, 4, 4, true},
		{"first page empty", 0, 10, 0, 0, true},
		{"first page full", 0, 10, 10, 0, false},
		{"unpaged", 0, 0, 7, 7, true},
		{"last page not full", 20, 10, 3, 23, true},
		{"later page full", 20, 10, 10, 0, false},
		{"past the end", 50, 10, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total, ok := DerivableTotal(tc.offset, tc.pageSize, tc.size)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.total, total)
		})
	}
}

func TestCountStrategy(t *testing.T) {
	var e BaseEnum = CountWhenNeeded
	assert.True(t, e.IsValid())
	assert.Equal(t, 1, e.Number())
	assert.Equal(t, "when_needed", e.String())
	assert.NotEmpty(t, e.Desc())

	bad := CountStrategy(9)
	assert.False(t, bad.IsValid())
	assert.Equal(t, IllegalValue, bad.Number())
	assert.Equal(t, IllegalName, bad.Name())
	assert.Equal(t, IllegalDesc, bad.Desc())
}

func TestPtr(t *testing.T) {
	p := Ptr("x")
	require.NotNil(t, p)
	assert.Equal(t, "x", *p)
	assert.NotSame(t, Ptr(1), Ptr(1))
}
