package domain

import "fmt"

// BasisPoints es la base de los fee rates: 10000 = 100%.
const BasisPoints = 10_000

// Rates por defecto: 5% para el protocolo, 5% para el subject.
const (
	DefaultProtocolFeeBps = 500
	DefaultSubjectFeeBps  = 500
)

// FeePolicy calcula los dos fees de cada trade a partir del precio base.
// Es pura: no tiene estado mutable.
type FeePolicy struct {
	ProtocolBps uint64
	SubjectBps  uint64
}

// NewFeePolicy valida los rates. La suma no puede superar BasisPoints:
// con rates mayores el net del vendedor sería negativo.
func NewFeePolicy(protocolBps, subjectBps uint64) (FeePolicy, error) {
	if protocolBps+subjectBps > BasisPoints {
		return FeePolicy{}, fmt.Errorf("domain.NewFeePolicy: rates %d+%d exceed %d bps", protocolBps, subjectBps, BasisPoints)
	}
	return FeePolicy{ProtocolBps: protocolBps, SubjectBps: subjectBps}, nil
}

// DefaultFeePolicy devuelve la política 5%/5%.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{ProtocolBps: DefaultProtocolFeeBps, SubjectBps: DefaultSubjectFeeBps}
}

// Fees devuelve (protocol fee, subject fee) para un precio base.
// División entera con floor: el redondeo siempre favorece al protocolo —
// el comprador nunca paga menos que el total floored, el vendedor nunca
// recibe más que el resto floored.
func (p FeePolicy) Fees(base uint64) (protocolFee, subjectFee uint64) {
	return feeOf(base, p.ProtocolBps), feeOf(base, p.SubjectBps)
}

// feeOf calcula floor(base*bps/BasisPoints) sin que base*bps pueda hacer
// wrap: se descompone base en cociente y resto módulo la base de puntos.
func feeOf(base, bps uint64) uint64 {
	return (base/BasisPoints)*bps + (base%BasisPoints)*bps/BasisPoints
}

// BuyTotal devuelve el coste total del comprador: base + ambos fees.
func (p FeePolicy) BuyTotal(base uint64) (uint64, error) {
	pfee, sfee := p.Fees(base)
	total, err := addU64(base, pfee)
	if err != nil {
		return 0, err
	}
	return addU64(total, sfee)
}

// SellNet devuelve el neto del vendedor: base - ambos fees.
// Nunca es negativo: NewFeePolicy garantiza rates ≤ BasisPoints.
func (p FeePolicy) SellNet(base uint64) uint64 {
	pfee, sfee := p.Fees(base)
	return base - pfee - sfee
}
