package holder

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdjwtcore/sdjwt"
	"github.com/sdjwtcore/sdjwt/disclosure"
	"github.com/sdjwtcore/sdjwt/issuer"
)

// jsonRoundTrip simulates what actually happens on the wire: the issued
// payload is JSON-marshaled into the JWT, signed, transmitted, and
// JSON-unmarshaled back out by the party recreating claims. Testing
// against the raw in-process issuer.Result would skip this and miss type
// differences like "_sd" arriving as []any rather than []string.
func jsonRoundTrip(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func blobsOf(disclosures []*disclosure.Disclosure) []string {
	out := make([]string, len(disclosures))
	for i, d := range disclosures {
		out[i] = d.Encoded
	}
	return out
}

func counterSalt() disclosure.SaltProvider {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("s%d", n), nil
	}
}

func TestRecreateFullDisclosureRoundTrip(t *testing.T) {
	root := sdjwt.NewDObject().
		With("sub", sdjwt.Claim(sdjwt.NeverSelectively, "user-1")).
		With("given_name", sdjwt.Claim(sdjwt.AlwaysSelectively, "John")).
		With("family_name", sdjwt.Claim(sdjwt.AlwaysSelectively, "Doe"))

	issued, err := issuer.Issue(root, issuer.Config{SaltProvider: counterSalt()})
	require.NoError(t, err)

	payload := jsonRoundTrip(t, issued.Payload)
	result, err := Recreate(payload, blobsOf(issued.Disclosures))
	require.NoError(t, err)

	assert.Equal(t, "user-1", result.Payload["sub"])
	assert.Equal(t, "John", result.Payload["given_name"])
	assert.Equal(t, "Doe", result.Payload["family_name"])
	assert.NotContains(t, result.Payload, "_sd")
	assert.NotContains(t, result.Payload, "_sd_alg")
	assert.Len(t, result.Consumed, 2)
}

func TestRecreatePartialDisclosureOmitsUnpresented(t *testing.T) {
	root := sdjwt.NewDObject().
		With("given_name", sdjwt.Claim(sdjwt.AlwaysSelectively, "John")).
		With("family_name", sdjwt.Claim(sdjwt.AlwaysSelectively, "Doe"))

	issued, err := issuer.Issue(root, issuer.Config{SaltProvider: counterSalt()})
	require.NoError(t, err)
	payload := jsonRoundTrip(t, issued.Payload)

	// Present only the first disclosure.
	result, err := Recreate(payload, []string{issued.Disclosures[0].Encoded})
	require.NoError(t, err)

	assert.Contains(t, result.Payload, issued.Disclosures[0].Name)
	assert.NotContains(t, result.Payload, issued.Disclosures[1].Name)
	assert.Len(t, result.Consumed, 1)
}

func TestRecreateNestedObject(t *testing.T) {
	address := sdjwt.NewDObject().
		With("street_address", sdjwt.Claim(sdjwt.AlwaysSelectively, "123 Main St")).
		With("country", sdjwt.Claim(sdjwt.NeverSelectively, "US"))
	root := sdjwt.NewDObject().With("address", sdjwt.Object(sdjwt.NeverSelectively, address))

	issued, err := issuer.Issue(root, issuer.Config{SaltProvider: counterSalt()})
	require.NoError(t, err)
	payload := jsonRoundTrip(t, issued.Payload)

	result, err := Recreate(payload, blobsOf(issued.Disclosures))
	require.NoError(t, err)

	addr, ok := result.Payload["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "123 Main St", addr["street_address"])
	assert.Equal(t, "US", addr["country"])

	childPath := sdjwt.Root().Claim("address").Claim("street_address")
	assert.True(t, result.Ledger.Disclosed(childPath))
	parentPath := sdjwt.Root().Claim("address")
	assert.False(t, result.Ledger.Disclosed(parentPath))
}

func TestRecreateArrayElementDisclosure(t *testing.T) {
	arr := sdjwt.NewDArray(
		sdjwt.Claim(sdjwt.AlwaysSelectively, "measles"),
		sdjwt.Claim(sdjwt.NeverSelectively, "varicella"),
	)
	root := sdjwt.NewDObject().With("vaccines", sdjwt.Array(sdjwt.NeverSelectively, arr))

	issued, err := issuer.Issue(root, issuer.Config{SaltProvider: counterSalt()})
	require.NoError(t, err)
	payload := jsonRoundTrip(t, issued.Payload)

	result, err := Recreate(payload, blobsOf(issued.Disclosures))
	require.NoError(t, err)

	vaccines, ok := result.Payload["vaccines"].([]any)
	require.True(t, ok)
	require.Len(t, vaccines, 2)
	assert.Equal(t, "measles", vaccines[0])
	assert.Equal(t, "varicella", vaccines[1])

	elemPath := sdjwt.Root().Claim("vaccines").ArrayElement(0)
	assert.True(t, result.Ledger.Disclosed(elemPath))
}

func TestRecreateOrphanDisclosureRejected(t *testing.T) {
	root := sdjwt.NewDObject().With("given_name", sdjwt.Claim(sdjwt.AlwaysSelectively, "John"))
	issued, err := issuer.Issue(root, issuer.Config{SaltProvider: counterSalt()})
	require.NoError(t, err)
	payload := jsonRoundTrip(t, issued.Payload)

	foreign, err := disclosure.EncodeObject("extra", "value", func() (string, error) { return "unrelated-salt", nil })
	require.NoError(t, err)

	bag := append(blobsOf(issued.Disclosures), foreign.Encoded)
	_, err = Recreate(payload, bag)
	assert.ErrorIs(t, err, sdjwt.ErrDisclosureInconsistency)
}

func TestRecreateMissingSDAlgWithDisclosuresPresent(t *testing.T) {
	payload := map[string]any{"sub": "user-1"}
	_, err := Recreate(payload, []string{"somedisclosureblob"})
	assert.ErrorIs(t, err, sdjwt.ErrAlgorithmUnknown)
}

func TestRecreateNoDisclosuresNoAlgRequired(t *testing.T) {
	payload := map[string]any{"sub": "user-1"}
	result, err := Recreate(payload, nil)
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.Payload["sub"])
}

func TestRecreateDuplicateDigestDetected(t *testing.T) {
	root := sdjwt.NewDObject().With("given_name", sdjwt.Claim(sdjwt.AlwaysSelectively, "John"))
	issued, err := issuer.Issue(root, issuer.Config{SaltProvider: counterSalt()})
	require.NoError(t, err)
	payload := jsonRoundTrip(t, issued.Payload)

	dup := blobsOf(issued.Disclosures)
	dup = append(dup, dup[0])

	_, err = Recreate(payload, dup)
	assert.ErrorIs(t, err, sdjwt.ErrDisclosureInconsistency)
}

func TestRecreateDepthLimitEnforced(t *testing.T) {
	root := map[string]any{}
	cur := root
	for i := 0; i < MaxDepth+10; i++ {
		next := map[string]any{}
		cur["child"] = next
		cur = next
	}

	_, err := Recreate(root, nil)
	assert.ErrorIs(t, err, sdjwt.ErrInputMalformed)
}
