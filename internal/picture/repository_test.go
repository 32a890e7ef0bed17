package picture

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// maxPlaceholder returns the highest $n referenced by a statement.
func maxPlaceholder(sql string) int {
	max := 0
	for _, m := range regexp.MustCompile(`\$(\d+)`).FindAllStringSubmatch(sql, -1) {
		n, _ := strconv.Atoi(m[1])
		if n > max {
			max = n
		}
	}
	return max
}

func TestUpsertStatementsCarrySpaceAssignment(t *testing.T) {
	assert.Contains(t, insertPictureSQL, "space_id")
	assert.Contains(t, updatePictureSQL, "space_id = $2",
		"a replace may adopt a space; the update must persist the assignment "+
			"the quota delta is applied for")

	// Both statements bind exactly the arguments SaveWithQuota passes.
	assert.Equal(t, 16, maxPlaceholder(insertPictureSQL))
	assert.Equal(t, 14, maxPlaceholder(updatePictureSQL))
}

func TestBuildListFilterEmpty(t *testing.T) {
	where, args := buildListFilter(ListQuery{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildListFilterClauses(t *testing.T) {
	pass := StatusPass
	where, args := buildListFilter(ListQuery{
		OwnerID:      "u1",
		NullSpaceID:  true,
		ReviewStatus: &pass,
		Name:         "cat",
		Tags:         []string{"hd", "art"},
	})

	require.True(t, strings.HasPrefix(where, " WHERE "))
	assert.Contains(t, where, "owner_id = $1")
	assert.Contains(t, where, "space_id IS NULL")
	assert.Contains(t, where, "review_status = $2")
	assert.Contains(t, where, "name ILIKE $3")
	assert.Contains(t, where, "tags LIKE $4")
	assert.Contains(t, where, "tags LIKE $5")

	require.Len(t, args, 5)
	assert.Equal(t, "%cat%", args[2])
	assert.Equal(t, `%"hd"%`, args[3], "tags match as quoted substrings of the serialized array")
	assert.Equal(t, `%"art"%`, args[4])

	// Placeholders stay in lockstep with the arg list.
	assert.Equal(t, len(args), maxPlaceholder(where))
}

func TestBuildListFilterSearchTextSpansNameAndIntroduction(t *testing.T) {
	where, args := buildListFilter(ListQuery{SearchText: "sunset"})
	assert.Equal(t, fmt.Sprintf(" WHERE (name ILIKE $%d OR introduction ILIKE $%d)", 1, 1), where)
	require.Len(t, args, 1)
	assert.Equal(t, "%sunset%", args[0])
}
