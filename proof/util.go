package proof

import "math/big"

func intToBig(i int) *big.Int { return big.NewInt(int64(i)) }
