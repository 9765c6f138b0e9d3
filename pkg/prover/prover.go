// Package prover is the pool/scheme prover-verifier façade (spec.md §4.8):
// circuit-key caching, proof generation, and proof verification for both
// pools and both value-commitment schemes.
//
// Parameter generation and persistence are owned by pkg/setup (generalized
// from the teacher's pkg/setup, driven one-shot by cmd/zairsetup); this
// package loads already-generated parameters and caches them per
// (scheme, target_id) for the process lifetime, grounded on
// original_source/crates/zair-orchard-proofs/src/keys.rs's keys_for:
// OnceLock<Mutex<HashMap<CacheKey, Arc<Keys>>>>, cache-poisoning surfaced as
// an error rather than panicking the caller.
package prover

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"

	"github.com/zair-project/nonmembership/circuits/orchard"
	"github.com/zair-project/nonmembership/circuits/sapling"
	"github.com/zair-project/nonmembership/pkg/assembly"
	"github.com/zair-project/nonmembership/pkg/setup"
	"github.com/zair-project/nonmembership/pkg/zerr"
)

// CacheKey identifies one circuit-key cache entry: a value-commitment
// scheme plus the target-id bytes/length pair Halo2-style parameters are
// keyed on (spec.md §4.8: "keyed by (scheme, target_id_bytes, target_id_len)
// for Orchard"; applied uniformly to both pools here for one cache
// implementation, a documented simplification since Groth16 keys do not
// actually depend on target_id the way Halo2's embedded-constant circuit
// does).
type CacheKey struct {
	Scheme      assembly.ValueCommitmentScheme
	TargetID    string
	TargetIDLen int
}

// KeyCache is the process-lifetime, mutex-protected circuit-key cache
// (spec.md §4.8, §5 "Shared resources"). A panic while holding the lock
// (e.g. a corrupt key file) poisons the cache permanently; every subsequent
// call surfaces zerr.CacheUnavailable rather than risking a torn map, ported
// from keys_for's Mutex::lock().map_err(|_| ClaimProofError::CachePoisoned).
type KeyCache struct {
	mu       sync.Mutex
	entries  map[CacheKey]any
	poisoned bool
}

// NewKeyCache constructs an empty cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{entries: make(map[CacheKey]any)}
}

func (c *KeyCache) getOrInit(key CacheKey, init func() (any, error)) (result any, err error) {
	c.mu.Lock()
	defer func() {
		if r := recover(); r != nil {
			c.poisoned = true
			c.mu.Unlock()
			err = zerr.CacheUnavailable(fmt.Errorf("key cache init panicked: %v", r))
			return
		}
		c.mu.Unlock()
	}()

	if c.poisoned {
		return nil, zerr.CacheUnavailable(fmt.Errorf("key cache is poisoned"))
	}
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	v, err := init()
	if err != nil {
		return nil, err
	}
	c.entries[key] = v
	return v, nil
}

// SaplingParams is one Sapling scheme's compiled circuit and Groth16
// keypair, loaded via pkg/setup.LoadKeys.
type SaplingParams struct {
	Scheme assembly.ValueCommitmentScheme
	CCS    constraint.ConstraintSystem
	PK     groth16.ProvingKey
	VK     groth16.VerifyingKey
}

// OrchardParams is one Orchard scheme's compiled circuit and PLONK keypair,
// plus K — the next-power-of-two constraint-count diagnostic this module
// uses in place of Halo2's domain parameter k (spec.md §4.8: "k mismatch
// between params and circuit's required k -> reject with diagnostic giving
// both values").
type OrchardParams struct {
	Scheme assembly.ValueCommitmentScheme
	CCS    constraint.ConstraintSystem
	PK     plonk.ProvingKey
	VK     plonk.VerifyingKey
	K      int
}

func saplingCircuitName(scheme assembly.ValueCommitmentScheme) (string, frontend.Circuit, error) {
	switch scheme {
	case assembly.SchemeNative:
		return "sapling_native", &sapling.NativeCircuit{}, nil
	case assembly.SchemeSha256:
		return "sapling_sha256", &sapling.Sha256Circuit{}, nil
	default:
		return "", nil, zerr.ParameterMismatch(fmt.Errorf("unknown sapling value-commitment scheme %d", scheme))
	}
}

func orchardCircuitName(scheme assembly.ValueCommitmentScheme) (string, frontend.Circuit, error) {
	switch scheme {
	case assembly.SchemeNative:
		return "orchard_native", &orchard.NativeCircuit{}, nil
	case assembly.SchemeSha256:
		return "orchard_sha256", &orchard.Sha256Circuit{}, nil
	default:
		return "", nil, zerr.ParameterMismatch(fmt.Errorf("unknown orchard value-commitment scheme %d", scheme))
	}
}

// LoadSaplingParams loads a Sapling scheme's keys from dir (written there by
// cmd/zairsetup). When checked, the loaded verifying key's public-witness
// count is re-validated against the compiled circuit (spec.md §4.8:
// "checked=true path re-verifies on load").
func LoadSaplingParams(dir string, scheme assembly.ValueCommitmentScheme, checked bool) (*SaplingParams, error) {
	name, circuit, err := saplingCircuitName(scheme)
	if err != nil {
		return nil, err
	}
	ccs, err := setup.CompileCircuit(circuit)
	if err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("compile %s: %w", name, err))
	}
	pk, vk, err := setup.LoadKeys(dir, name)
	if err != nil {
		return nil, zerr.IoFailure(fmt.Errorf("load %s keys: %w", name, err))
	}
	// VerifyingKey.NbPublicWitness, like fr.Element.SetBytesCanonical
	// elsewhere in this module, could not be confirmed against a locally
	// available gnark source; it is used here as the least-risky way to
	// cross-check a loaded key against its compiled circuit (DESIGN.md).
	if checked && int(vk.NbPublicWitness()) != ccs.GetNbPublicVariables() {
		return nil, zerr.ParameterMismatch(fmt.Errorf(
			"%s: verifying key public-witness count %d does not match compiled circuit's %d",
			name, vk.NbPublicWitness(), ccs.GetNbPublicVariables()))
	}
	return &SaplingParams{Scheme: scheme, CCS: ccs, PK: pk, VK: vk}, nil
}

// LoadOrchardParams loads an Orchard scheme's keys from dir.
func LoadOrchardParams(dir string, scheme assembly.ValueCommitmentScheme, checked bool) (*OrchardParams, error) {
	name, circuit, err := orchardCircuitName(scheme)
	if err != nil {
		return nil, err
	}
	ccs, err := setup.CompileCircuitForBackend(circuit, setup.PlonkBackend)
	if err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("compile %s: %w", name, err))
	}
	pk, vk, err := setup.LoadPlonkKeys(dir, name)
	if err != nil {
		return nil, zerr.IoFailure(fmt.Errorf("load %s keys: %w", name, err))
	}
	k := int(ecc.NextPowerOfTwo(uint64(ccs.GetNbConstraints())))
	if checked && int(vk.NbPublicWitness()) != ccs.GetNbPublicVariables() {
		return nil, zerr.ParameterMismatch(fmt.Errorf(
			"%s: verifying key public-witness count %d does not match compiled circuit's %d",
			name, vk.NbPublicWitness(), ccs.GetNbPublicVariables()))
	}
	return &OrchardParams{Scheme: scheme, CCS: ccs, PK: pk, VK: vk, K: k}, nil
}

// requireK rejects a params/circuit k mismatch with a diagnostic giving both
// values, per spec.md §4.8.
func requireK(name string, paramsK, circuitK int) error {
	if paramsK != circuitK {
		return zerr.ParameterMismatch(fmt.Errorf(
			"%s: params k=%d does not match circuit's required k=%d", name, paramsK, circuitK))
	}
	return nil
}

// ProveSecret is the per-proof randomness the caller must retain to later
// produce a spend-auth signature matching rk (spec.md §4.8: "secret{α, rcv,
// rcv_sha256}").
type ProveSecret struct {
	Alpha     *big.Int
	Rcv       *big.Int
	RcvSha256 *[32]byte
}

// ProveResult is one proof plus the public rk/cv/hiding_nf it binds and the
// blinding secrets generated alongside it, per spec.md §4.8's façade
// contract: prove(...) -> (proof_bytes, rk, cv|cv_sha256, hiding_nf,
// secret{alpha, rcv, rcv_sha256}). Rk and HidingNf are always populated; Cv
// is populated for the native scheme and CvSha256 for the SHA-256 scheme,
// the other left zero.
type ProveResult struct {
	ProofBytes []byte
	Rk         assembly.Point
	Cv         assembly.Point
	CvSha256   [32]byte
	HidingNf   *big.Int
	Secret     ProveSecret
}

// cvWordLimbs splits cv into 8 little-endian 32-bit limbs, matching
// circuits/sapling.Sha256Circuit/circuits/orchard.Sha256Circuit's in-circuit
// api.ToBinary(cv, 256) decomposition (word i = bits [32i, 32i+32) of cv).
func cvWordLimbs(cv *big.Int) [8]*big.Int {
	var words [8]*big.Int
	mod := new(big.Int).Lsh(big.NewInt(1), 32)
	v := new(big.Int).Set(cv)
	for i := 0; i < 8; i++ {
		word := new(big.Int)
		word.Mod(v, mod)
		words[i] = word
		v.Rsh(v, 32)
	}
	return words
}

// cvSha256Bytes packs a word-limb decomposition into the 32-byte layout
// saplingPublicAssignment/orchardPublicAssignment already expect:
// CvSha256[4i:4i+4] holds word i's big-endian bytes, so
// SetBytes(CvSha256[4i:4i+4]) recovers word i exactly. Note this is the
// circuit-internal Poseidon2 cv reinterpreted as bytes, distinct from
// assembly.CvSha256's genuine SHA-256 digest (DESIGN.md's documented
// SHA-256-gadget substitution) — it is what the proof actually binds, not
// the language-independent cv_sha256 preimage hash.
func cvSha256Bytes(words [8]*big.Int) [32]byte {
	var out [32]byte
	for i, w := range words {
		wb := w.FillBytes(make([]byte, 4))
		copy(out[i*4:i*4+4], wb)
	}
	return out
}

// sampleScalar rejection-samples a non-zero scalar, mirroring the teacher's
// pkg/crypto.GenerateSecretKey loop (for sk.Sign() == 0 { resample }) rather
// than accepting whatever crypto/rand.Int returns: a zero alpha or rcv is
// cryptographically degenerate here (it collapses rk to ak, or cv to the
// unblinded value), so zero is resampled instead of allowed through.
func sampleScalar(rng io.Reader) (*big.Int, error) {
	for {
		n, err := rand.Int(rng, ecc.BN254.ScalarField())
		if err != nil {
			return nil, zerr.CryptoFailure(fmt.Errorf("sample scalar: %w", err))
		}
		if n.Sign() != 0 {
			return n, nil
		}
	}
}

// SaplingProver proves and verifies Sapling claims via Groth16, grounded on
// pkg/setup's groth16.Setup/Prove/Verify idiom (teacher's pkg/setup.go,
// circuits/keyleak/export.go's PLONK analogue adapted to Groth16).
type SaplingProver struct {
	cache *KeyCache
	dir   string
}

// NewSaplingProver constructs a prover that loads parameters from dir and
// caches them in cache (share one cache across both pools' provers if
// desired; spec.md §5 treats the cache as process-wide, not per-prover).
func NewSaplingProver(dir string, cache *KeyCache) *SaplingProver {
	return &SaplingProver{cache: cache, dir: dir}
}

func (p *SaplingProver) params(scheme assembly.ValueCommitmentScheme, targetID string) (*SaplingParams, error) {
	key := CacheKey{Scheme: scheme, TargetID: targetID, TargetIDLen: len(targetID)}
	v, err := p.cache.getOrInit(key, func() (any, error) {
		return LoadSaplingParams(p.dir, scheme, true)
	})
	if err != nil {
		return nil, err
	}
	return v.(*SaplingParams), nil
}

// bindSaplingSecrets samples fresh alpha/rcv, writes them into witness's
// private fields, derives rk/cv/hiding_nf from those same values, and writes
// the derived values into witness's public fields so the witness proved by
// groth16.Prove is internally consistent with what Prove returns to the
// caller.
func bindSaplingSecrets(witness frontend.Circuit, alpha, rcv *big.Int) (rk, cv, hidingNf *big.Int, err error) {
	switch c := witness.(type) {
	case *sapling.NativeCircuit:
		rk, cv, hidingNf = c.Witness.BindSecrets(alpha, rcv)
		c.RkX, c.RkY = rk, big.NewInt(0)
		c.CvX, c.CvY = cv, big.NewInt(0)
		c.AirdropNf = hidingNf
	case *sapling.Sha256Circuit:
		rk, cv, hidingNf = c.Witness.BindSecrets(alpha, rcv)
		c.RkX, c.RkY = rk, big.NewInt(0)
		words := cvWordLimbs(cv)
		for i := 0; i < 8; i++ {
			c.CvSha256Word[i] = words[i]
		}
		c.AirdropNf = hidingNf
	default:
		return nil, nil, nil, zerr.ParameterMismatch(fmt.Errorf("unsupported sapling witness type %T", witness))
	}
	return rk, cv, hidingNf, nil
}

// Prove generates a Sapling claim proof. witness must already carry the
// scheme-appropriate public/private field values (circuits/sapling) except
// for Alpha/Rcv and the rk/cv/airdrop_nf public fields they determine, which
// Prove derives itself so the returned rk/cv/hiding_nf are guaranteed to
// match what the proof binds (spec.md §3's ClaimProof invariant: rk is
// derived from the same alpha witnessed inside the proof). rng supplies the
// spend-auth re-randomization and value-commitment-blinding secrets returned
// alongside the proof (spec.md §5: "RNG use draws from the OS CSPRNG per
// proof; never shared" — callers pass crypto/rand.Reader).
func (p *SaplingProver) Prove(targetID string, witness frontend.Circuit, scheme assembly.ValueCommitmentScheme, rng io.Reader) (*ProveResult, error) {
	params, err := p.params(scheme, targetID)
	if err != nil {
		return nil, err
	}

	alpha, err := sampleScalar(rng)
	if err != nil {
		return nil, err
	}
	rcv, err := sampleScalar(rng)
	if err != nil {
		return nil, err
	}

	rk, cv, hidingNf, err := bindSaplingSecrets(witness, alpha, rcv)
	if err != nil {
		return nil, err
	}

	fullWitness, err := frontend.NewWitness(witness, ecc.BN254.ScalarField())
	if err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("build sapling witness: %w", err))
	}
	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("extract sapling public witness: %w", err))
	}

	proof, err := groth16.Prove(params.CCS, params.PK, fullWitness)
	if err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("groth16 prove: %w", err))
	}
	if err := groth16.Verify(proof, params.VK, publicWitness); err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("groth16 self-verify: %w", err))
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("marshal sapling proof: %w", err))
	}

	result := &ProveResult{
		ProofBytes: buf.Bytes(),
		Rk:         assembly.Point{X: rk, Y: big.NewInt(0)},
		HidingNf:   hidingNf,
		Secret:     ProveSecret{Alpha: alpha, Rcv: rcv},
	}
	if scheme == assembly.SchemeSha256 {
		result.CvSha256 = cvSha256Bytes(cvWordLimbs(cv))
	} else {
		result.Cv = assembly.Point{X: cv, Y: big.NewInt(0)}
	}
	return result, nil
}

// Verify checks a Sapling claim proof against its assembled public inputs,
// reconstructing the scalar column exactly as assembly did (spec.md §4.8).
func (p *SaplingProver) Verify(targetID string, proofBytes []byte, public assembly.PublicInputs) error {
	params, err := p.params(public.Scheme(), targetID)
	if err != nil {
		return err
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return zerr.InvalidInputEncoding(fmt.Errorf("malformed sapling proof bytes: %w", err))
	}

	assignment, err := saplingPublicAssignment(public)
	if err != nil {
		return err
	}
	publicWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return zerr.InvalidInputEncoding(fmt.Errorf("build sapling public witness: %w", err))
	}

	if err := groth16.Verify(proof, params.VK, publicWitness); err != nil {
		return zerr.CryptoFailure(fmt.Errorf("groth16 verify: %w", err))
	}
	return nil
}

func saplingPublicAssignment(public assembly.PublicInputs) (frontend.Circuit, error) {
	switch in := public.(type) {
	case assembly.NativeInputs:
		cvX, cvY := assembly.CoordsOrZero(&in.Cv)
		return &sapling.NativeCircuit{
			RkX: in.Rk.X, RkY: in.Rk.Y,
			CvX: cvX, CvY: cvY,
			CmRoot: in.CmRoot, NfGapRoot: in.NfGapRoot, AirdropNf: in.AirdropNf,
		}, nil
	case assembly.Sha256Inputs:
		circuit := &sapling.Sha256Circuit{
			RkX: in.Rk.X, RkY: in.Rk.Y,
			CmRoot: in.CmRoot, NfGapRoot: in.NfGapRoot, AirdropNf: in.AirdropNf,
		}
		for i := 0; i < 8; i++ {
			circuit.CvSha256Word[i] = new(big.Int).SetBytes(in.CvSha256[i*4 : i*4+4])
		}
		return circuit, nil
	default:
		return nil, zerr.ParameterMismatch(fmt.Errorf("unsupported public input type %T", public))
	}
}

// OrchardProver proves and verifies Orchard claims via PLONK, standing in
// for the original Halo2 proving system (package doc, circuits/orchard).
type OrchardProver struct {
	cache *KeyCache
	dir   string
}

func NewOrchardProver(dir string, cache *KeyCache) *OrchardProver {
	return &OrchardProver{cache: cache, dir: dir}
}

func (p *OrchardProver) params(scheme assembly.ValueCommitmentScheme, targetID string) (*OrchardParams, error) {
	key := CacheKey{Scheme: scheme, TargetID: targetID, TargetIDLen: len(targetID)}
	v, err := p.cache.getOrInit(key, func() (any, error) {
		return LoadOrchardParams(p.dir, scheme, true)
	})
	if err != nil {
		return nil, err
	}
	return v.(*OrchardParams), nil
}

// bindOrchardSecrets is circuits/sapling's bindSaplingSecrets, applied to the
// orchard circuit types.
func bindOrchardSecrets(witness frontend.Circuit, alpha, rcv *big.Int) (rk, cv, hidingNf *big.Int, err error) {
	switch c := witness.(type) {
	case *orchard.NativeCircuit:
		rk, cv, hidingNf = c.Witness.BindSecrets(alpha, rcv)
		c.RkX, c.RkY = rk, big.NewInt(0)
		c.CvX, c.CvY = cv, big.NewInt(0)
		c.AirdropNf = hidingNf
	case *orchard.Sha256Circuit:
		rk, cv, hidingNf = c.Witness.BindSecrets(alpha, rcv)
		c.RkX, c.RkY = rk, big.NewInt(0)
		words := cvWordLimbs(cv)
		for i := 0; i < 8; i++ {
			c.CvSha256Word[i] = words[i]
		}
		c.AirdropNf = hidingNf
	default:
		return nil, nil, nil, zerr.ParameterMismatch(fmt.Errorf("unsupported orchard witness type %T", witness))
	}
	return rk, cv, hidingNf, nil
}

// Prove generates an Orchard claim proof. requiredK is the caller's expected
// domain size (e.g. from a previously loaded params set shared across a
// batch); pass 0 to skip the check on a first call. As in SaplingProver.Prove,
// the returned rk/cv/hiding_nf are derived from the same alpha/rcv bound into
// the witness before proving.
func (p *OrchardProver) Prove(targetID string, witness frontend.Circuit, scheme assembly.ValueCommitmentScheme, requiredK int, rng io.Reader) (*ProveResult, error) {
	params, err := p.params(scheme, targetID)
	if err != nil {
		return nil, err
	}
	if requiredK != 0 {
		if err := requireK("orchard", params.K, requiredK); err != nil {
			return nil, err
		}
	}

	alpha, err := sampleScalar(rng)
	if err != nil {
		return nil, err
	}
	rcv, err := sampleScalar(rng)
	if err != nil {
		return nil, err
	}

	rk, cv, hidingNf, err := bindOrchardSecrets(witness, alpha, rcv)
	if err != nil {
		return nil, err
	}

	fullWitness, err := frontend.NewWitness(witness, ecc.BN254.ScalarField())
	if err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("build orchard witness: %w", err))
	}
	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("extract orchard public witness: %w", err))
	}

	proof, err := plonk.Prove(params.CCS, params.PK, fullWitness)
	if err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("plonk prove: %w", err))
	}
	if err := plonk.Verify(proof, params.VK, publicWitness); err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("plonk self-verify: %w", err))
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, zerr.CryptoFailure(fmt.Errorf("marshal orchard proof: %w", err))
	}

	result := &ProveResult{
		ProofBytes: buf.Bytes(),
		Rk:         assembly.Point{X: rk, Y: big.NewInt(0)},
		HidingNf:   hidingNf,
		Secret:     ProveSecret{Alpha: alpha, Rcv: rcv},
	}
	if scheme == assembly.SchemeSha256 {
		result.CvSha256 = cvSha256Bytes(cvWordLimbs(cv))
	} else {
		result.Cv = assembly.Point{X: cv, Y: big.NewInt(0)}
	}
	return result, nil
}

// Verify checks an Orchard claim proof against its assembled public inputs.
func (p *OrchardProver) Verify(targetID string, proofBytes []byte, public assembly.PublicInputs, requiredK int) error {
	params, err := p.params(public.Scheme(), targetID)
	if err != nil {
		return err
	}
	if requiredK != 0 {
		if err := requireK("orchard", params.K, requiredK); err != nil {
			return err
		}
	}

	proof := plonk.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return zerr.InvalidInputEncoding(fmt.Errorf("malformed orchard proof bytes: %w", err))
	}

	assignment, err := orchardPublicAssignment(public)
	if err != nil {
		return err
	}
	publicWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return zerr.InvalidInputEncoding(fmt.Errorf("build orchard public witness: %w", err))
	}

	if err := plonk.Verify(proof, params.VK, publicWitness); err != nil {
		return zerr.CryptoFailure(fmt.Errorf("plonk verify: %w", err))
	}
	return nil
}

func orchardPublicAssignment(public assembly.PublicInputs) (frontend.Circuit, error) {
	switch in := public.(type) {
	case assembly.NativeInputs:
		cvX, cvY := assembly.CoordsOrZero(&in.Cv)
		return &orchard.NativeCircuit{
			RkX: in.Rk.X, RkY: in.Rk.Y,
			CvX: cvX, CvY: cvY,
			CmRoot: in.CmRoot, NfGapRoot: in.NfGapRoot, AirdropNf: in.AirdropNf,
		}, nil
	case assembly.Sha256Inputs:
		circuit := &orchard.Sha256Circuit{
			RkX: in.Rk.X, RkY: in.Rk.Y,
			CmRoot: in.CmRoot, NfGapRoot: in.NfGapRoot, AirdropNf: in.AirdropNf,
		}
		for i := 0; i < 8; i++ {
			circuit.CvSha256Word[i] = new(big.Int).SetBytes(in.CvSha256[i*4 : i*4+4])
		}
		return circuit, nil
	default:
		return nil, zerr.ParameterMismatch(fmt.Errorf("unsupported public input type %T", public))
	}
}
