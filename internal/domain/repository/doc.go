// Package repository define las entidades de dominio y el contrato genérico de
// persistencia (Gateway) que comparten todos los backends.
//
// Las implementaciones concretas viven en internal/store/adapters/.
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────┐
//	│        auth.Service / accounts services             │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│  domain/repository                                  │
//	│  Gateway[T], Filters, Mapper[T], User/Org/Merchant  │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	              ┌─────────┴─────────┐
//	              ▼                   ▼
//	┌─────────────────────┐  ┌─────────────────────┐
//	│  adapters/memory    │  │  adapters/sql       │
//	│  (volátil)          │  │  (postgres, sqlite) │
//	└─────────────────────┘  └─────────────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
//   - Cada entidad declara su Mapper (Record <-> entidad)
package repository
